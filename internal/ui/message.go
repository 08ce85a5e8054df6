package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgProgressUpdate
	MsgSplitComplete
)

type playlistsFetched struct {
	playlists []models.Playlist
	err       error
}

type splitOutcome struct {
	result *tasks.SplitResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// splitCompleteMsg is the constructor for [MsgSplitComplete]
func splitCompleteMsg(result *tasks.SplitResult, err error) Msg {
	return Msg{kind: MsgSplitComplete, data: splitOutcome{result, err}}
}
