package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plsplit/internal/shared"
	"github.com/desertthunder/plsplit/internal/tasks"
	"github.com/desertthunder/plsplit/internal/ui"
)

// runTUI follows a split in the interactive terminal UI and returns its outcome once the user quits.
func (r *Runner) runTUI(ctx context.Context, engine *tasks.SplitEngine, cfg tasks.SplitConfig, dryRun bool) (*tasks.SplitResult, error) {
	if cfg.Origin == "" && r.playlists == nil {
		return nil, fmt.Errorf("%w: --playlist (no playlist listing available)", shared.ErrMissingArgument)
	}

	model := ui.NewModel(ctx, r.playlists, engine, cfg, dryRun)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(r.output))

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	return model.Result()
}
