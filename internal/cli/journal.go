package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eternalApril/respkit/internal/journal"
)

func newJournalCommand(a *app) *cobra.Command {
	group := &cobra.Command{
		Use:   "journal",
		Short: "Maintain append-only journals of RESP values",
	}

	appendCmd := &cobra.Command{
		Use:   "append <journal>",
		Short: "Append YAML documents to a journal as RESP values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readYAML(cmd)
			if err != nil {
				return err
			}

			j, err := journal.Open(args[0], journal.Options{
				Fsync:      a.cfg.Journal.Fsync,
				QueueSize:  a.cfg.Journal.QueueSize,
				BufferSize: a.cfg.Journal.BufferSize,
			}, a.logger)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}

			for _, v := range values {
				if err := j.Append(v); err != nil {
					_ = j.Close()
					return fmt.Errorf("append: %w", err)
				}
			}
			return j.Close()
		},
	}
	appendCmd.Flags().StringP("file", "f", "", "YAML input file (default stdin)")

	replayCmd := &cobra.Command{
		Use:   "replay <journal>",
		Short: "Render every complete value of a journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := journal.Load(args[0], a.logger)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), r.Values)
		},
	}

	compactCmd := &cobra.Command{
		Use:   "compact <journal>",
		Short: "Rewrite a journal without its truncated tail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := journal.Compact(args[0], a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kept %d values (%d bytes), dropped %d bytes\n",
				len(r.Values), r.Size, r.Truncated)
			return nil
		},
	}

	group.AddCommand(appendCmd, replayCmd, compactCmd)
	return group
}
