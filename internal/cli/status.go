package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigilo-hq/vigilo/internal/repository/postgres"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine storage summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := postgres.New(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			counts := map[string]int{}
			for _, table := range []string{"notifications", "security_alerts", "audit_entries", "tasks", "reviews"} {
				var n int
				if err := db.QueryRowContext(cmd.Context(),
					fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
					return err
				}
				counts[table] = n
			}

			if getOutputFormat() != "table" {
				return printOutput(counts)
			}

			fmt.Println("Vigilo Storage")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  Notifications:   %d\n", counts["notifications"])
			fmt.Printf("  Security alerts: %d\n", counts["security_alerts"])
			fmt.Printf("  Audit entries:   %d\n", counts["audit_entries"])
			fmt.Printf("  Open tasks:      %d\n", counts["tasks"])
			fmt.Printf("  Reviews:         %d\n", counts["reviews"])
			return nil
		},
	}
}
