package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/costa-brava-bikers/clubhouse-api/internal/storage"
)

type storeOpener func(ctx context.Context) (*storage.Store, func(), error)

var errResetNotConfirmed = errors.New("reset wipes all stored data; rerun with --yes to confirm")

func newRootCommand(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clubctl",
		Short:         "Inspect and maintain the clubhouse data store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newDumpCommand(open))
	cmd.AddCommand(newCheckVersionCommand(open))
	cmd.AddCommand(newResetCommand(open))
	return cmd
}

func withStore(cmd *cobra.Command, open storeOpener, fn func(ctx context.Context, s *storage.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(ctx, s)
}

func newDumpCommand(open storeOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "dump [members|trips|polls]",
		Short:     "Print stored collections as JSON (runs the version guard first; may wipe on mismatch)",
		Long: `Print stored collections as JSON, falling back to seed data when nothing is stored.

Reading members runs the schema version guard. Unless DEV_MODE is set, a
stored version that differs from the current one wipes the whole namespace,
exactly as on server start. Run "clubctl check-version"
first to see what a start would do.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"members", "trips", "polls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *storage.Store) error {
				var v any
				which := ""
				if len(args) == 1 {
					which = args[0]
				}
				switch which {
				case "members":
					v = s.GetMembers(ctx)
				case "trips":
					v = s.GetTrips(ctx)
				case "polls":
					v = s.GetPolls(ctx)
				default:
					v = map[string]any{
						"members": s.GetMembers(ctx),
						"trips":   s.GetTrips(ctx),
						"polls":   s.GetPolls(ctx),
					}
				}
				return writeIndented(cmd.OutOrStdout(), v)
			})
		},
	}
	return cmd
}

func newCheckVersionCommand(open storeOpener) *cobra.Command {
	var dev bool
	cmd := &cobra.Command{
		Use:   "check-version",
		Short: "Run the schema version guard (wipes the store on mismatch)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, open, func(ctx context.Context, s *storage.Store) error {
				before, _, err := s.StoredVersion(ctx)
				if err != nil {
					return err
				}
				s.CheckVersion(ctx, dev)
				after, _, err := s.StoredVersion(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case dev:
					fmt.Fprintf(out, "development mode: version guard skipped (stored %q, current %q)\n", before, storage.CurrentVersion)
				case before == after:
					fmt.Fprintf(out, "version %s is current\n", after)
				default:
					fmt.Fprintf(out, "storage reset: %q -> %q\n", before, after)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "skip the guard as development mode does")
	return cmd
}

func newResetCommand(open storeOpener) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the namespace and stamp the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			return withStore(cmd, open, func(ctx context.Context, s *storage.Store) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "storage reset to version %s\n", storage.CurrentVersion)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
