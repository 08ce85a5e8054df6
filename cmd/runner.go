package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsplit/internal/services"
	"github.com/desertthunder/plsplit/internal/shared"
	"github.com/desertthunder/plsplit/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.OAuthService
	catalog    services.Catalog
	playlists  ui.PlaylistLister
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Playlists override the ones taken from Spotify.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.OAuthService
	Catalog    services.Catalog
	Playlists  ui.PlaylistLister
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		playlists:  opts.Playlists,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.Spotify != nil {
		r.setSpotify(opts.Spotify)
	}
	return r
}

// setSpotify installs srv as the catalog unless one was injected.
func (r *Runner) setSpotify(srv services.OAuthService) {
	r.spotify = srv
	if r.catalog == nil {
		r.catalog = srv
	}
	if lister, ok := srv.(ui.PlaylistLister); ok && r.playlists == nil {
		r.playlists = lister
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, spotifyCommand, splitCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}
	keepSliceValues(commands)

	return commands
}

// keepSliceValues stops every command in the tree from splitting slice flag values on commas.
// The setting is re-applied by each command as it runs, so --pool A,B only reaches ParsePoolFlag
// intact when the leaf command carries it too.
func keepSliceValues(commands []*cli.Command) {
	for _, c := range commands {
		c.DisableSliceFlagSeparator = true
		keepSliceValues(c.Commands)
	}
}

// before runs ahead of every command: it applies --verbose, loads --config and logs in with stored tokens.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configPath == "" {
		r.configPath = defaultConfigPath
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if r.catalog == nil {
		r.login(ctx)
	}
	return ctx, nil
}

// login authenticates with the stored token. Failures leave the runner without a catalog;
// commands needing one report it through [Runner.requireCatalog].
func (r *Runner) login(ctx context.Context) {
	creds, err := shared.ResolveCredentials(r.config.SpotifyCredentials(), os.Getenv)
	if err != nil {
		r.logger.Debug("spotify credentials unavailable", "error", err)
		return
	}

	srv, err := services.Login(ctx, creds, r.config.Credentials.Spotify.Token(), r.spotifyOptions()...)
	if err != nil {
		r.logger.Debug("spotify login skipped", "error", err)
		return
	}

	srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveTokens(token); err != nil {
			r.logger.Warn("failed to persist refreshed token", "error", err)
			return
		}
		r.logger.Debug("refreshed token saved", "path", r.configPath)
	})
	r.setSpotify(srv)
}

func (r *Runner) spotifyOptions() []services.SpotifyOption {
	return []services.SpotifyOption{
		services.WithRateLimit(r.config.API.RateLimit),
		services.WithMaxRetries(r.config.API.MaxRetries),
		services.WithMaxRetryWait(time.Duration(r.config.API.MaxRetryWait)*time.Second),
		services.WithPublicPlaylists(r.config.Split.Public),
		services.WithLogger(shared.WithLogger(r.logger, "service", "spotify")),
	}
}

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify not authenticated, run `plsplit spotify auth` first", shared.ErrServiceUnavailable)
	}
	return nil
}

// saveTokens stores token in the config and writes it to the config path, when one is set.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return errors.New("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
