package dispatch

import (
	"context"
	"fmt"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/task"
)

// systemFamily dispatches infrastructure events. Remediation is always
// a human follow-up; the pipeline never restarts infrastructure itself.
type systemFamily struct {
	d *Dispatcher
}

func (systemFamily) category() event.Category { return event.CategorySystem }

func (f *systemFamily) remediate(ctx context.Context, ev event.Event) {
	d := f.d

	switch e := ev.(type) {
	case *event.DatabaseFailure:
		if !e.Recovered {
			d.createTask(ctx, ev, task.KindManualIntervention,
				fmt.Sprintf("Database %s failure needs attention", e.Operation),
				e.Description())
		}

	case *event.FileUploadFailure:
		if e.StorageFull {
			d.createTask(ctx, ev, task.KindManualIntervention,
				"Storage exhausted",
				fmt.Sprintf("Upload of %s failed because storage is full; expand capacity or purge old files", e.FileName))
		}

	case *event.QueueFailure:
		if e.Severity() == event.SeverityCritical {
			d.createTask(ctx, ev, task.KindManualIntervention,
				fmt.Sprintf("Queue %s is failing jobs", e.Lane),
				e.Description())
		}
	}
}

// patterns flags database instability that single events understate.
func (f *systemFamily) patterns(ctx context.Context, _ event.Event) {
	d := f.d
	since := d.deps.Clock.Now().Add(-d.deps.PatternWindow)

	entries, err := d.deps.Audit.RecentByKind(ctx, event.DatabaseFailure{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for database failures")
		return
	}
	if len(entries) >= 3 {
		d.secondaryAlert(ctx, "database_instability", event.SeverityHigh,
			fmt.Sprintf("%d database failures observed", len(entries)),
			fmt.Sprintf("%d database failure events within %s suggest systemic instability", len(entries), d.deps.PatternWindow),
			"", "", 0)
	}
}
