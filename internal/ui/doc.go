// Package ui implements an interactive terminal interface for a split using bubbletea's Elm architecture.
//
// The TUI walks through up to four views:
//  1. [PlaylistListView] : Pick the origin playlist when none was given
//  2. [ConfirmView] : Review the pools and destinations
//  3. [SplitView] : Follow the run with a spinner and a progress bar
//  4. [ResultView] : One row per bucket, or the error that stopped the run
//
// Progress updates flow through a channel from the [tasks.SplitEngine]; the engine never blocks on a slow UI.
// ctrl+c during a run cancels its context. Nothing already written is rolled back.
package ui
