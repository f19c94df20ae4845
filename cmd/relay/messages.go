package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/advisor-relay/internal/store"
)

func newMessagesCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Print the message log, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.DBPath, a.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if err := st.Initialize(ctx); err != nil {
				return err
			}
			records, err := st.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as a JSON array")
	return cmd
}

func printRecords(w io.Writer, records []store.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, r := range records {
		content := strings.ReplaceAll(r.Content, "\n", " ")
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%-9s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.SessionID, r.Role, content); err != nil {
			return err
		}
	}
	return nil
}
