package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dgallion1/docoutline/internal/outline"
)

func main() {
	cmd := &cli.Command{
		Name:  "outline",
		Usage: "Write a title and heading outline for every document in a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Directory of documents to outline",
				Value:   "/app/input",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the <name>.json results are written to",
				Value:   "/app/output",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Documents processed at once",
				Value: runtime.NumCPU(),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Deadline for a single document",
				Value: 2 * time.Minute,
			},
			&cli.FloatFlag{
				Name:  "title-band",
				Usage: "Lowest top edge, in points from the page top, a title may start at",
				Value: outline.DefaultConfig().TitleBandY,
			},
			&cli.IntFlag{
				Name:  "min-heading-runes",
				Usage: "Shortest heading text, in characters",
				Value: outline.DefaultConfig().MinHeadingRunes,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "outline:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := outline.DefaultConfig()
	cfg.TitleBandY = cmd.Float("title-band")
	cfg.MinHeadingRunes = int(cmd.Int("min-heading-runes"))

	sum, err := runBatch(ctx, batchOptions{
		InputDir:    cmd.String("input"),
		OutputDir:   cmd.String("output"),
		Concurrency: int(cmd.Int("concurrency")),
		Timeout:     cmd.Duration("timeout"),
		Engine:      outline.NewEngine(cfg, log),
	}, log)
	if err != nil {
		return err
	}

	log.Info("batch finished",
		"documents", sum.Total,
		"failed", sum.Failed,
		"duration_ms", sum.Elapsed.Milliseconds(),
	)
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", sum.Failed, sum.Total)
	}
	return nil
}
