package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plsplit/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem is a candidate origin playlist in the picker.
type playlistItem struct {
	playlist models.Playlist
}

// FilterValue matches on both name and id so a pasted id finds its playlist.
func (i playlistItem) FilterValue() string { return i.playlist.Name + " " + i.playlist.ID }
func (i playlistItem) Title() string       { return i.playlist.Name }

func (i playlistItem) Description() string {
	parts := []string{fmt.Sprintf("%d tracks", i.playlist.TrackCount)}
	if i.playlist.Public {
		parts = append(parts, "public")
	} else {
		parts = append(parts, "private")
	}
	parts = append(parts, i.playlist.ID)
	return strings.Join(parts, " • ")
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, 0, len(playlists))
	for _, pl := range playlists {
		if pl.ID == "" {
			continue
		}
		items = append(items, playlistItem{playlist: pl})
	}
	return items
}
