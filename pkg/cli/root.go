/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/vlm-launcher/pkg/config"
	"github.com/NVIDIA/vlm-launcher/pkg/header"
	"github.com/NVIDIA/vlm-launcher/pkg/logging"
	"github.com/NVIDIA/vlm-launcher/pkg/resolver"
	"github.com/NVIDIA/vlm-launcher/pkg/selector"
	"github.com/NVIDIA/vlm-launcher/pkg/serializer"
	apiversion "github.com/NVIDIA/vlm-launcher/pkg/version"
)

const name = "vlmctl"

// version is set at build time via ldflags.
var version = "dev"

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("output format (%s)", serializer.SupportedFormats()),
	}
)

// NewApp creates the vlmctl command.
func NewApp() *cli.Command {
	return newApp()
}

// newApp lets tests replace resolver collaborators.
func newApp(opts ...resolver.Option) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Resolve the live-vlm-webui image for this host",
		Description: `Detect the host platform (macOS, x86_64, Jetson Orin/Thor, arm64 SBSA),
discover published image versions, and print the image reference and
container runtime flags to use.

Examples:
  vlmctl
  vlmctl --version 0.2.1
  vlmctl --list-versions --format json
  GITHUB_TOKEN=... vlmctl --skip-version-pick`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "version",
				Usage: "image version or tag to use, skips the version prompt",
			},
			&cli.BoolFlag{
				Name:  "list-versions",
				Usage: "print the available versions and exit",
			},
			&cli.BoolFlag{
				Name:  "skip-version-pick",
				Usage: "use the latest version without prompting",
			},
			&cli.BoolFlag{
				Name:  "simulate-public",
				Usage: "ignore GITHUB_TOKEN to reproduce anonymous access",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "output logs in JSON format",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, opts...)
		},
	}
}

// Execute runs the CLI application.
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

func run(ctx context.Context, cmd *cli.Command, opts ...resolver.Option) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("unexpected arguments: %v", cmd.Args().Slice())
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.UserAgent == apiversion.DefaultUserAgent {
		cfg.UserAgent = fmt.Sprintf("%s/%s", name, version)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	invocationID := logging.SetDefault(level, cmd.Bool("log-json"))

	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	root := cmd.Root()
	all := append([]resolver.Option{
		resolver.WithInteractive(selector.IsTerminal(root.Reader)),
		resolver.WithMetadata(header.MetadataInvocationID, invocationID),
		resolver.WithMetadata(header.MetadataToolVersion, version),
	}, opts...)

	r, err := resolver.NewFromConfig(cfg, root.Reader, root.ErrWriter, all...)
	if err != nil {
		return fmt.Errorf("failed to create resolver: %w", err)
	}

	req := resolver.Request{
		Version:         cmd.String("version"),
		SkipVersionPick: cmd.Bool("skip-version-pick"),
		Token:           cfg.Token,
		SimulatePublic:  cfg.SimulatePublic || cmd.Bool("simulate-public"),
	}

	var doc any
	if cmd.Bool("list-versions") {
		doc, err = r.ListVersions(ctx, req)
	} else {
		doc, err = r.Resolve(ctx, req)
	}
	if err != nil {
		return err
	}

	ser, err := newOutputWriter(cmd, outFormat)
	if err != nil {
		return err
	}
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, doc)
}
