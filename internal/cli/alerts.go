package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilo-hq/vigilo/internal/repository/postgres"
)

func newAlertsCmd() *cobra.Command {
	var (
		kind  string
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List recent audit entries for one event kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := postgres.New(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.NewAuditStore(db)
			entries, err := store.RecentByKind(cmd.Context(), kind, time.Now().Add(-since))
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(entries)
			}

			t := NewTable("EVENT", "SEVERITY", "ACTOR", "TARGET", "OCCURRED")
			for _, e := range entries {
				t.AddRow(e.EventID, e.Severity, e.Actor, e.Target,
					e.OccurredAt.Format("2006-01-02 15:04:05"))
			}
			t.Render()
			fmt.Printf("\n%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "security.failed_login", "event kind to list")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "look-back window")

	return cmd
}
