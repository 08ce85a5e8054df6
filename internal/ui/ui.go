package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plsplit/internal/formatter"
	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	SplitView
	ResultView
)

// PlaylistLister lists the playlists the origin can be picked from.
type PlaylistLister interface {
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	lister       PlaylistLister
	engine       *tasks.SplitEngine
	cfg          tasks.SplitConfig
	dryRun       bool
	width        int
	height       int
	playlistList list.Model
	spinner      spinner.Model
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	outcome      chan splitOutcome
	progress     tasks.ProgressUpdate
	result       *tasks.SplitResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI for cfg. With an empty cfg.Origin the user picks one from lister first.
// dryRun runs [tasks.SplitEngine.Plan] instead of Split.
func NewModel(ctx context.Context, lister PlaylistLister, engine *tasks.SplitEngine, cfg tasks.SplitConfig, dryRun bool) *Model {
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 50

	view := ConfirmView
	if cfg.Origin == "" {
		view = PlaylistListView
	}

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		view:    view,
		lister:  lister,
		engine:  engine,
		cfg:     cfg,
		dryRun:  dryRun,
		spinner: sp,
		bar:     bar,
		help:    help.New(),
		keys:    newKeyMap(dryRun),
	}
}

// Result returns the outcome of the run once the program has exited.
func (m *Model) Result() (*tasks.SplitResult, error) {
	return m.result, m.err
}

// Init fetches playlists when no origin was given and starts the spinner.
func (m *Model) Init() tea.Cmd {
	if m.view == PlaylistListView {
		return tea.Batch(m.fetchPlaylists(), m.spinner.Tick)
	}
	return m.spinner.Tick
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-20, 20), 80)
		if m.playlistList.Items() != nil {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case SplitView:
			return m.handleSplitKeys(msg)
		case ResultView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == PlaylistListView && m.playlistList.Items() != nil {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.playlistList = list.New(playlistItems(data.playlists), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Pick the playlist to split"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSplitComplete:
		data := msg.data.(splitOutcome)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.Items() == nil {
		if key.Matches(msg, m.keys.quit) {
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	}

	if m.playlistList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.pick):
			if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				m.cfg.Origin = pl.playlist.ID
				m.view = ConfirmView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.start):
		m.view = SplitView
		return m, m.startSplit()
	case key.Matches(msg, m.keys.back):
		if m.playlistList.Items() != nil {
			m.cfg.Origin = ""
			m.view = PlaylistListView
			return m, nil
		}
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleSplitKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) {
		m.cancel()
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.lister.GetPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) startSplit() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.outcome = make(chan splitOutcome, 1)

	run := m.engine.Split
	if m.dryRun {
		run = m.engine.Plan
	}

	go func(progress chan tasks.ProgressUpdate, outcome chan<- splitOutcome) {
		result, err := run(m.ctx, m.cfg, progress)
		outcome <- splitOutcome{result, err}
		close(progress)
	}(m.progressChan, m.outcome)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan, outcome := m.progressChan, m.outcome
	return func() tea.Msg {
		if update, ok := <-progressChan; ok {
			return progressUpdateMsg(update)
		}
		done := <-outcome
		return splitCompleteMsg(done.result, done.err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case ConfirmView:
		return m.renderConfirm()
	case SplitView:
		return m.renderSplit()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderPlaylistList() string {
	if m.playlistList.Items() == nil {
		return fmt.Sprintf("%s Loading playlists...", m.spinner.View())
	}
	helpView := m.help.ShortHelpView(m.keys.bindings(PlaylistListView))
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	verb := "Split"
	if m.dryRun {
		verb = "Plan"
	}
	title := styles.title.Render(fmt.Sprintf("%s %s by %s?", verb, m.cfg.Origin, m.cfg.Mode))

	var b strings.Builder
	for i, pool := range m.cfg.Pools {
		name := pool.Name
		if name == "" {
			name = fmt.Sprintf("pool %d", i+1)
		}
		fmt.Fprintf(&b, "%d. %s (%d keys) -> %s\n", i+1, name, pool.Len(), m.destination(i))
	}
	fmt.Fprintf(&b, "%d. unmatched -> %s", len(m.cfg.Pools)+1, m.destination(len(m.cfg.Pools)))

	helpView := m.help.ShortHelpView(m.keys.bindings(ConfirmView))
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.box.Render(b.String()), helpView)
}

func (m *Model) destination(i int) string {
	switch {
	case len(m.cfg.Targets) == 0:
		return "new playlist"
	case i < len(m.cfg.Targets):
		return m.cfg.Targets[i]
	default:
		return styles.warn.Render("dropped")
	}
}

func (m *Model) renderSplit() string {
	title := styles.title.Render("Splitting Playlist")

	phase := styles.phaseLabel(m.progress.Phase)

	percent := 0.0
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}

	helpView := m.help.ShortHelpView(m.keys.bindings(SplitView))
	return fmt.Sprintf("%s\n%s %s\n%s\n%s\n\n%s",
		title, m.spinner.View(), phase, m.bar.ViewAs(percent), styles.muted.Render(m.progress.Message), helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.bindings(ResultView))

	if m.err != nil {
		msg := fmt.Sprintf("Split failed: %v", m.err)
		if m.result != nil && m.result.Written() > 0 {
			msg += "\nPlaylists already written were left as they are."
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Split Complete!")
	if m.result.DryRun {
		title = styles.ok.Render("✓ Plan Ready")
	}

	var dropped string
	if n := len(m.result.Dropped); n > 0 {
		dropped = "\n" + styles.warn.Render(fmt.Sprintf("%d unmatched tracks had no destination", n))
	}

	return fmt.Sprintf("%s\n\n%s%s\n\n%s", title, formatter.RenderTable(m.result), dropped, helpView)
}
