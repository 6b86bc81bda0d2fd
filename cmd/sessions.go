package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/photo-bracket/photo-bracket/bracket/journal"
)

// sessionsCmd lists journaled sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List journaled sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("journaling is disabled (journal.driver: none)")
		}
		defer store.Close()
		return listSessions(ctx, store, cmd.OutOrStdout())
	},
}

func listSessions(ctx context.Context, store *journal.Store, w io.Writer) error {
	infos, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "no sessions")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tCREATED\tITEMS\tOPS")
	for _, si := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", si.ID, si.Label, humanize.Time(si.CreatedAt),
			humanize.Comma(int64(si.Items)), humanize.Comma(int64(si.Ops)))
	}
	return tw.Flush()
}
