package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/pilingqa/internal/adapters/archive"
	"github.com/samirrijal/pilingqa/internal/adapters/dxf"
	"github.com/samirrijal/pilingqa/internal/adapters/landxml"
	natsadapter "github.com/samirrijal/pilingqa/internal/adapters/nats"
	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
	"github.com/samirrijal/pilingqa/internal/pkg/config"
	"github.com/samirrijal/pilingqa/internal/pkg/logging"
)

func main() {
	var (
		logLevel string
		noDXF    bool
	)

	rootCmd := &cobra.Command{
		Use:   "designpoints",
		Short: "Read piling design points from LandXML, DXF and .lok files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(os.Stderr, logLevel, "text"))
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noDXF, "no-dxf", false, "Disable the DXF reader")

	var (
		format string
		limit  int
	)
	extractCmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract design points from one or more files",
		Long: `Extract design points from one or more files. Each file is printed as
its own table: table and csv output start every file with a "==> FILE <=="
header, json output is a list of {file, format, points} objects, and
geojson, plan and orbit output write one document per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseOutput(format)
			if err != nil {
				return err
			}
			files, err := extractFiles(cmd.Context(), newDesignService(!noDXF), args)
			if err != nil {
				return err
			}
			return renderFiles(cmd.OutOrStdout(), out, files, limit)
		},
	}
	extractCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv, geojson, plan, orbit)")
	extractCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most n rows in table output (0 for all)")

	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List accepted design formats",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, f := range newDesignService(!noDXF).Formats() {
				note := ""
				if f == domain.FormatDXF && noDXF {
					note = " (disabled)"
				}
				fmt.Fprintf(w, "  %-8s %s%s\n", f, usecases.ExtensionFor(f), note)
			}
		},
	}

	var (
		natsURL string
		durable string
	)
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print design.loaded events as dashboards load designs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				cfg, err := config.Load("pilingqa-cli")
				if err != nil {
					return err
				}
				natsURL = cfg.NATS.URL
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), natsURL, durable)
		},
	}
	watchCmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default from config)")
	watchCmd.Flags().StringVar(&durable, "durable", "", "Durable consumer name to resume from")

	rootCmd.AddCommand(extractCmd, formatsCmd, watchCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newDesignService(dxfEnabled bool) *usecases.DesignService {
	xml := landxml.NewExtractor()
	return usecases.NewDesignService(xml, dxf.NewExtractor(dxfEnabled), archive.NewExtractor(xml))
}

// extractFiles loads every file in argument order, one table per file.
func extractFiles(ctx context.Context, designs *usecases.DesignService, paths []string) ([]designFile, error) {
	files := make([]designFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		table, format, err := designs.Load(ctx, path, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if table.Empty() {
			slog.Warn("no design points found", "file", path)
		}
		files = append(files, designFile{Path: path, Format: format, Points: table})
	}
	return files, nil
}

func watch(ctx context.Context, w io.Writer, url, durable string) error {
	sub, err := natsadapter.NewSubscriber(url)
	if err != nil {
		return err
	}
	defer sub.Close()

	err = sub.SubscribeDesignLoaded(ctx, durable, func(_ context.Context, ev *domain.DesignLoadedEvent) error {
		_, err := fmt.Fprintf(w, "%s  %-7s %5d points  %s  session=%s\n",
			ev.LoadedAt.Format("2006-01-02 15:04:05"), ev.Format, ev.PointCount, ev.FileName, ev.SessionID)
		return err
	})
	if err != nil {
		return err
	}
	slog.Info("watching design events", "url", url)

	<-ctx.Done()
	return nil
}
