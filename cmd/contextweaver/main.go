package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/contextweaver/internal/config"
	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// projectFlags are shared by every command that analyses a directory
func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory to analyse",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Tool config file, resolved against --dir when relative",
			Value:   config.ConfigFile,
		},
		&cli.StringFlag{
			Name:  "settings",
			Usage: "Global settings document (default: <user config dir>/contextweaver/appsettings.json)",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Parallel workers (0 = config value or number of CPUs)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Additional file extensions to analyse (e.g., --include .razor)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Additional directory names or glob patterns to skip (e.g., --exclude Migrations --exclude '**/*.g.cs')",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Fail files with syntax errors instead of analysing what parsed",
		},
	}
}

// reportFlags select where and how the report is written
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report file path, - for stdout (default: config value or " + config.DefaultOutputPath + ")",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: markdown, json, yaml (default: config value or " + config.DefaultOutputFormat + ")",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Do not print the summary and diagnostics",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "contextweaver",
		Usage:                  "Structural analysis of C# code bases: complexity, public API, dependencies and module instability",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags:                  append(projectFlags(), reportFlags()...),
		Before: func(c *cli.Context) error {
			if debug.IsDebugEnabled() {
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Action: analyzeCommand,
		Commands: []*cli.Command{
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Analyse, then rewrite the report whenever a selected file changes",
				Flags:   append(projectFlags(), reportFlags()...),
				Action:  watchCommand,
			},
			{
				Name:  "modules",
				Usage: "Print the module dependency tree",
				Flags: append(projectFlags(),
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "One line per module",
					},
					&cli.BoolFlag{
						Name:    "metrics",
						Aliases: []string{"m"},
						Usage:   "Show Ca, Ce and instability next to each module",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Maximum dependency depth (0 = unlimited)",
					},
				),
				Action: modulesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve analyses as MCP tools over stdio",
				Flags:  projectFlags(),
				Action: mcpCommand,
			},
			{
				Name:  "settings",
				Usage: "Manage the analysis settings document",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write the default settings document",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "path",
								Usage: "Document to write (default: the global settings document)",
							},
							&cli.BoolFlag{
								Name:  "local",
								Usage: "Write " + config.LocalSettingsFile + " into --dir instead of the global document",
							},
							&cli.StringFlag{
								Name:    "dir",
								Aliases: []string{"d"},
								Usage:   "Directory for --local",
								Value:   ".",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing document",
							},
						},
						Action: settingsInitCommand,
					},
					{
						Name:  "show",
						Usage: "Print the effective settings for --dir",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "dir",
								Aliases: []string{"d"},
								Usage:   "Directory whose settings are shown",
								Value:   ".",
							},
							&cli.StringFlag{
								Name:  "settings",
								Usage: "Global settings document",
							},
						},
						Action: settingsShowCommand,
					},
				},
			},
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					return nil
				},
			},
		},
	}
}
