// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the label cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the label cache and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// spotifyCommand handles Spotify account operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify account operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
			{
				Name:  "playlists",
				Usage: "List your Spotify playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.SpotifyPlaylists,
			},
		},
	}
}

func splitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Origin playlist id, URI or URL (picked interactively with --tui when omitted)",
		},
		&cli.StringFlag{
			Name:    "by",
			Aliases: []string{"b"},
			Usage:   "Split mode: artist or label (overrides the pools file)",
		},
		&cli.StringSliceFlag{
			Name:  "pool",
			Usage: "Comma-separated pool keys, optionally prefixed with name= (repeat for each pool, in priority order). " +
				"Start with = when a key contains =; use --pools-file for keys containing commas",
		},
		&cli.StringFlag{
			Name:  "pools-file",
			Usage: "TOML or YAML file listing the split mode and pools",
		},
		&cli.StringSliceFlag{
			Name:  "into",
			Usage: "Destination playlist id, URI or URL (repeat once per pool, plus one for unmatched tracks)",
		},
		&cli.StringFlag{
			Name:  "label-lookup",
			Usage: "Label lookup policy: per-track, cached or persistent (defaults to split.label_lookup)",
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Tracks per write request (defaults to split.batch_size)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the result as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Follow the run in an interactive terminal UI",
		},
		&cli.StringFlag{
			Name:    "report",
			Aliases: []string{"o"},
			Usage:   "Also write the result to this file (.txt, .md or .json)",
		},
	}
}

// splitCommand handles playlist splits
func splitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "Split a playlist into destination playlists",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Clear and rewrite the destination playlists",
				Flags:  splitFlags(),
				Action: r.SplitRun,
			},
			{
				Name:   "plan",
				Usage:  "Show how tracks would be split without writing anything",
				Flags:  splitFlags(),
				Action: r.SplitPlan,
			},
		},
	}
}

// cacheCommand handles the album label cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the album label cache",
		Commands: []*cli.Command{
			{
				Name:  "labels",
				Usage: "Show cached labels and how many albums each covers",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "albums",
						Usage: "List every cached album instead of the per-label summary",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.CacheLabels,
			},
			{
				Name:  "clear",
				Usage: "Remove cached labels",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only remove entries fetched longer ago than this (e.g. 720h)",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
