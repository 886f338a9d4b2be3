package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/kirillkom/context-store/internal/core/ports"
	"github.com/kirillkom/context-store/internal/infrastructure/exchange"
	"github.com/kirillkom/context-store/internal/infrastructure/workerpool"
)

type services struct {
	Transfer ports.TransferService
	Reindex  ports.ReindexService
	Stats    ports.StatsService
}

type serviceLoader func(ctx context.Context) (*services, func(), error)

func newRootCommand(load serviceLoader) *cobra.Command {
	root := &cobra.Command{
		Use:   "ctxadm",
		Short: "Context store administration",
		Long: `ctxadm exports, imports, reindexes and wipes the context store.

Example usage:
  ctxadm export --format yaml --out backup.yaml
  ctxadm import --file backup.yaml
  ctxadm reindex --async
  ctxadm stats --project infra`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExportCommand(load),
		newImportCommand(load),
		newReindexCommand(load),
		newStatsCommand(load),
		newWipeCommand(load),
	)
	return root
}

// withServices loads the services for one command run and releases them after.
func withServices(cmd *cobra.Command, load serviceLoader, fn func(*services) error) error {
	svc, closeFn, err := load(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(svc)
}

func newExportCommand(load serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export active items and projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawFormat, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			format, err := exchange.ParseFormat(rawFormat)
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(svc *services) error {
				bundle, err := svc.Transfer.Export(cmd.Context())
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				if out == "" {
					return exchange.Encode(cmd.OutOrStdout(), format, bundle)
				}
				if err := writeFile(out, func(w io.Writer) error {
					return exchange.Encode(w, format, bundle)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d items and %d projects to %s\n",
					bundle.ExportInfo.TotalItems, bundle.ExportInfo.TotalProjects, out)
				return nil
			})
		},
	}
	cmd.Flags().String("format", "json", "export format: json, yaml or xlsx")
	cmd.Flags().String("out", "", "output file (default stdout)")
	return cmd
}

func newImportCommand(load serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import items and projects from a JSON or YAML export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			bundle, err := exchange.Decode(filepath.Base(path), f)
			if err != nil {
				return err
			}
			return withServices(cmd, load, func(svc *services) error {
				report, err := svc.Transfer.Import(cmd.Context(), bundle)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().String("file", "", "export file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newReindexCommand(load serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Recompute item vectors",
		Long: `Recompute vectors for one item or every active item.

Without --async the work runs in this process on a bounded worker pool.
With --async one event per item is published for the worker service.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetInt64("id")
			async, _ := cmd.Flags().GetBool("async")
			workers, _ := cmd.Flags().GetInt("workers")
			return withServices(cmd, load, func(svc *services) error {
				ctx := cmd.Context()
				switch {
				case id > 0:
					if err := svc.Reindex.ReindexByID(ctx, id); err != nil {
						return fmt.Errorf("reindex item %d: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "reindexed item %d\n", id)
					return nil
				case async:
					n, err := svc.Reindex.ScheduleAll(ctx)
					if err != nil {
						return fmt.Errorf("schedule reindex: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "scheduled %d items\n", n)
					return nil
				default:
					return reindexInline(cmd, svc.Reindex, workers)
				}
			})
		},
	}
	cmd.Flags().Int64("id", 0, "reindex a single item")
	cmd.Flags().Bool("async", false, "publish reindex events instead of running inline")
	cmd.Flags().Int("workers", 4, "concurrent jobs for inline reindex")
	return cmd
}

func reindexInline(cmd *cobra.Command, reindex ports.ReindexService, workers int) error {
	ctx := cmd.Context()
	ids, err := reindex.ActiveItemIDs(ctx)
	if err != nil {
		return err
	}

	pool, err := workerpool.New(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var failed atomic.Int64
	for _, id := range ids {
		if err := pool.Go(func() {
			if err := reindex.ReindexByID(ctx, id); err != nil {
				failed.Add(1)
				fmt.Fprintf(cmd.ErrOrStderr(), "item %d: %v\n", id, err)
			}
		}); err != nil {
			return err
		}
	}
	pool.Wait()

	fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d items, %d failed\n", len(ids)-int(failed.Load()), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d items failed to reindex", failed.Load())
	}
	return nil
}

func newStatsCommand(load serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show item counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, _ := cmd.Flags().GetString("project")
			return withServices(cmd, load, func(svc *services) error {
				stats, err := svc.Stats.Stats(cmd.Context(), project)
				if err != nil {
					return fmt.Errorf("stats: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().String("project", "", "restrict counts to one project")
	return cmd
}

func newWipeCommand(load serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Permanently delete all items and projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to wipe without --yes")
			}
			return withServices(cmd, load, func(svc *services) error {
				report, err := svc.Transfer.Wipe(cmd.Context())
				if err != nil {
					return fmt.Errorf("wipe: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm deletion")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
