package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/pkg/clock"
	remediationsvc "github.com/vigilo-hq/vigilo/internal/remediation"
	redisstore "github.com/vigilo-hq/vigilo/internal/store/redis"
)

func newBlocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Inspect active protective state",
	}

	cmd.AddCommand(newBlocksIPCmd())
	cmd.AddCommand(newBlocksUserCmd())
	return cmd
}

func newBlocksIPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ip <address>",
		Short: "Show the active block for an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, cleanup, err := connectActions(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := actions.IsIPBlocked(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderState(args[0], state)
		},
	}
}

func newBlocksUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show the active suspension for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, cleanup, err := connectActions(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			state, err := actions.IsSuspended(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderState(args[0], state)
		},
	}
}

func connectActions(cmd *cobra.Command) (remediation.Actions, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, nil, fmt.Errorf("REDIS_ENABLED must be true to inspect protective state")
	}

	store, err := redisstore.New(cmd.Context(), cfg.Redis)
	if err != nil {
		return nil, nil, err
	}

	actions := remediationsvc.NewService(store, store, clock.System(), log)
	return actions, func() { store.Close() }, nil
}

func renderState(subject string, state *remediation.ProtectiveState) error {
	if state == nil {
		fmt.Printf("%s: no active state\n", subject)
		return nil
	}

	if getOutputFormat() != "table" {
		return printOutput(state)
	}

	t := NewTable("SUBJECT", "SEVERITY", "APPLIED", "UNTIL", "REASON")
	t.AddRow(state.Subject, state.Severity,
		state.AppliedAt.Format("2006-01-02 15:04:05"),
		state.Until.Format("2006-01-02 15:04:05"),
		state.Reason)
	t.Render()
	return nil
}
