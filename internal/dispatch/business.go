package dispatch

import (
	"context"
	"fmt"

	"github.com/vigilo-hq/vigilo/internal/domain/event"
	"github.com/vigilo-hq/vigilo/internal/domain/task"
)

// businessFamily dispatches business events: sales, payments, expenses,
// goals and client lifecycle.
type businessFamily struct {
	d *Dispatcher
}

func (businessFamily) category() event.Category { return event.CategoryBusiness }

func (f *businessFamily) remediate(ctx context.Context, ev event.Event) {
	d := f.d

	switch e := ev.(type) {
	case *event.HighValueSale:
		if e.RequiresApproval() {
			d.createReview(ctx, ev,
				fmt.Sprintf("Sale %s at %.2f (%.1f%% over threshold)", e.SaleID, e.Amount, e.ThresholdExceedancePercentage),
				e.SalespersonID)
		}

	case *event.UnusualExpense:
		if e.ShouldBlockExpense() {
			d.createTask(ctx, ev, task.KindManualIntervention,
				fmt.Sprintf("Expense %s held pending approval", e.ExpenseID),
				fmt.Sprintf("Expense %s of %.2f in %s deviates %.1f%% from the expected amount; approve or reject before payout",
					e.ExpenseID, e.ExpenseAmount, e.CategoryName, e.DeviationPercentage))
			d.runCheck(ctx, ev, "require_verification", func() error {
				return d.deps.Actions.RequireVerification(ctx, e.SubmittedBy, d.deps.PatternWindow)
			})
		}

	case *event.PaymentStatusChanged:
		if e.IsPaymentFailure() && e.Severity() == event.SeverityCritical {
			d.createTask(ctx, ev, task.KindReview,
				fmt.Sprintf("Investigate failed payment on sale %s", e.SaleID),
				fmt.Sprintf("Payment of %.2f for sale %s moved to %s; contact client %s and reconcile",
					e.Amount, e.SaleID, e.NewStatus, e.ClientID))
		}

	case *event.ClientDeleted:
		if e.ActiveSales > 0 {
			d.createTask(ctx, ev, task.KindReview,
				fmt.Sprintf("Reassign %d active sales of deleted client %s", e.ActiveSales, e.ClientName),
				fmt.Sprintf("Client %s (%s) was deleted with %d open sales; reassign or close them",
					e.ClientName, e.ClientID, e.ActiveSales))
		}

	case *event.GoalFailed:
		if e.IsRepeatedFailure() {
			d.secondaryAlert(ctx, "repeated_goal_failure", e.Severity(),
				fmt.Sprintf("Goal %q failed %d times in a row", e.GoalName, e.ConsecutiveFailures),
				e.Description(), "", e.OwnerID, 0)
		}
	}
}

// patterns catches goals that keep failing across separate events even
// when no single event carries a long streak.
func (f *businessFamily) patterns(ctx context.Context, _ event.Event) {
	d := f.d
	since := d.deps.Clock.Now().Add(-d.deps.PatternWindow)

	entries, err := d.deps.Audit.RecentByKind(ctx, event.GoalFailed{}.Kind(), since)
	if err != nil {
		d.deps.Logger.ErrorWithErr(err, "Pattern scan failed for goal failures")
		return
	}
	for goalID, n := range countByFact(entries, "goal_id") {
		if goalID == "" || n < 5 {
			continue
		}
		d.secondaryAlert(ctx, "chronic_goal_failure", event.SeverityHigh,
			fmt.Sprintf("Goal %s failed %d times", goalID, n),
			fmt.Sprintf("Goal %s recorded %d failures within %s", goalID, n, d.deps.PatternWindow),
			"", "", 0)
	}
}
