package dispatch

import (
	"context"
	"fmt"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/task"
)

// contentFamily dispatches content events. Its remediation is
// human-in-the-loop: rollback tasks and reviews, never TTL state.
type contentFamily struct {
	d *Dispatcher
}

func (contentFamily) category() event.Category { return event.CategoryContent }

func (f *contentFamily) remediate(ctx context.Context, ev event.Event) {
	d := f.d

	switch e := ev.(type) {
	case *event.MassContentDeletion:
		if e.DeletedPublishedContent() {
			d.createTask(ctx, ev, task.KindReview,
				fmt.Sprintf("Verify deletion of %d published %s items", e.PublishedCount, e.ContentType),
				fmt.Sprintf("User %s deleted %d published %s items; confirm the deletion was intended and restore from backup if not",
					e.DeletedBy, e.PublishedCount, e.ContentType))
		}

	case *event.BulkOperation:
		if e.RequiresRollback() {
			d.createTask(ctx, ev, task.KindRollback,
				fmt.Sprintf("Roll back bulk %s (%0.1f%% failed)", e.OperationType, e.FailureRate),
				fmt.Sprintf("Bulk %s over %d items by %s failed at %.1f%%; roll back the partial result",
					e.OperationType, e.ItemCount, e.InitiatedBy, e.FailureRate))
		}
		if e.RequiresReview() {
			d.createReview(ctx, ev,
				fmt.Sprintf("Bulk %s of %d items", e.OperationType, e.ItemCount), e.InitiatedBy)
		}
	}
}

// patterns flags deletion campaigns from one address and bulk work done
// outside business hours.
func (f *contentFamily) patterns(ctx context.Context, _ event.Event) {
	d := f.d
	since := d.deps.Clock.Now().Add(-d.deps.PatternWindow)

	entries, err := d.deps.Audit.RecentByKind(ctx, event.MassContentDeletion{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for mass deletions")
	} else {
		for ip, n := range countByFact(entries, "ip_address") {
			if ip == "" || n < 3 {
				continue
			}
			d.secondaryAlert(ctx, "mass_deletion_campaign", event.SeverityHigh,
				fmt.Sprintf("%d mass deletions from %s", n, ip),
				fmt.Sprintf("%d mass content deletions originated from %s within %s", n, ip, d.deps.PatternWindow),
				ip, "", 0)
		}
	}

	entries, err = d.deps.Audit.RecentByKind(ctx, event.BulkOperation{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for bulk operations")
		return
	}
	if n := countWhereTrue(entries, "outside_business_hours"); n >= 3 {
		d.secondaryAlert(ctx, "offhours_bulk_operations", event.SeverityMedium,
			fmt.Sprintf("%d bulk operations outside business hours", n),
			fmt.Sprintf("%d bulk operations ran outside business hours within %s", n, d.deps.PatternWindow),
			"", "", 0)
	}
}
