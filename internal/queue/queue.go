package queue

import (
	"context"
	"strings"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
)

// Producer publishes events onto their routing lane
type Producer interface {
	Publish(ctx context.Context, ev event.Event) error
	Close() error
}

// Handler processes one decoded event. A non-nil error requests
// redelivery; delivery is at least once and handlers are idempotent.
type Handler func(ctx context.Context, ev event.Event) error

// Consumer pulls events off the lanes and feeds them to a handler
type Consumer interface {
	Run(ctx context.Context, h Handler) error
	Close() error
}

// Lanes enumerates every routing lane: three priority tiers per family
func Lanes() []string {
	categories := []event.Category{
		event.CategorySecurity,
		event.CategoryContent,
		event.CategoryBusiness,
		event.CategorySystem,
	}
	tiers := []event.Severity{event.SeverityLow, event.SeverityHigh, event.SeverityCritical}

	lanes := make([]string, 0, len(categories)*len(tiers))
	for _, c := range categories {
		for _, s := range tiers {
			lanes = append(lanes, event.QueueNameFor(c, s))
		}
	}
	return lanes
}

// ParseBrokers parses a comma-separated broker list and trims whitespace
func ParseBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}
	list := strings.Split(brokers, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	return list
}
