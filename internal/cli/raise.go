package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/queue"
)

func newRaiseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raise",
		Short: "Publish a test event onto the alert lanes",
	}

	cmd.AddCommand(newRaiseFailedLoginCmd())
	cmd.AddCommand(newRaiseDatabaseFailureCmd())
	return cmd
}

func newRaiseFailedLoginCmd() *cobra.Command {
	var (
		email      string
		ip         string
		attempts   int
		window     int
		bruteForce bool
	)

	cmd := &cobra.Command{
		Use:   "failed-login",
		Short: "Raise a failed-login event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := event.NewFailedLogin(time.Now(), event.FailedLogin{
				Email:         email,
				IPAddress:     ip,
				Attempts:      attempts,
				WindowMinutes: window,
				BruteForce:    bruteForce,
			})
			if err != nil {
				return err
			}
			return publish(cmd.Context(), ev)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&ip, "ip", "", "source IP address")
	cmd.Flags().IntVar(&attempts, "attempts", 1, "failed attempts in the window")
	cmd.Flags().IntVar(&window, "window", 15, "window in minutes")
	cmd.Flags().BoolVar(&bruteForce, "brute-force", false, "mark as a brute-force pattern")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("ip")

	return cmd
}

func newRaiseDatabaseFailureCmd() *cobra.Command {
	var (
		operation string
		table     string
		message   string
		count     int
		recovered bool
	)

	cmd := &cobra.Command{
		Use:   "database-failure",
		Short: "Raise a database-failure event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := event.NewDatabaseFailure(time.Now(), event.DatabaseFailure{
				Operation:    operation,
				Table:        table,
				ErrMessage:   message,
				Recovered:    recovered,
				FailureCount: count,
			})
			if err != nil {
				return err
			}
			return publish(cmd.Context(), ev)
		},
	}

	cmd.Flags().StringVar(&operation, "operation", "query", "failed operation")
	cmd.Flags().StringVar(&table, "table", "", "affected table")
	cmd.Flags().StringVar(&message, "message", "connection refused", "error message")
	cmd.Flags().IntVar(&count, "count", 1, "failure count")
	cmd.Flags().BoolVar(&recovered, "recovered", false, "whether the operation recovered")

	return cmd
}

func publish(ctx context.Context, ev event.Event) error {
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("KAFKA_ENABLED must be true to raise events from the CLI")
	}

	producer := queue.NewKafkaProducer(queue.ParseBrokers(cfg.Kafka.Brokers), log)
	defer producer.Close()

	if err := producer.Publish(ctx, ev); err != nil {
		return err
	}

	fmt.Printf("Published %s (%s) to lane %s\n", ev.Kind(), ev.ID(), ev.QueueName())
	return nil
}
