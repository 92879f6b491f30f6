package event

import (
	"fmt"
	"time"
)

// GoalFailed records a business goal missing its target.
type GoalFailed struct {
	Meta
	GoalID              string  `json:"goal_id" validate:"required"`
	GoalName            string  `json:"goal_name" validate:"required"`
	OwnerID             string  `json:"owner_id" validate:"required"`
	TargetValue         float64 `json:"target_value" validate:"min=0"`
	ActualValue         float64 `json:"actual_value" validate:"min=0"`
	Critical            bool    `json:"critical"`
	ConsecutiveFailures int     `json:"consecutive_failures" validate:"min=1"`
	ShortfallPercentage float64 `json:"shortfall_percentage"`
}

// NewGoalFailed constructs a GoalFailed event and precomputes the
// shortfall percentage.
func NewGoalFailed(at time.Time, gf GoalFailed) (*GoalFailed, error) {
	gf.Meta = newMeta(at)
	gf.ShortfallPercentage = 0
	if gf.TargetValue > 0 {
		gf.ShortfallPercentage = (gf.TargetValue - gf.ActualValue) / gf.TargetValue * 100
	}
	if err := checkFields(gf.Kind(), gf); err != nil {
		return nil, err
	}
	return &gf, nil
}

func (GoalFailed) Kind() string       { return "business.goal_failed" }
func (GoalFailed) Category() Category { return CategoryBusiness }

func (e GoalFailed) Severity() Severity {
	switch {
	case e.Critical && e.ConsecutiveFailures >= 3:
		return SeverityCritical
	case e.Critical:
		return SeverityHigh
	case e.ConsecutiveFailures >= 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e GoalFailed) Title() string {
	return fmt.Sprintf("Goal %q missed its target", e.GoalName)
}

func (e GoalFailed) Description() string {
	return fmt.Sprintf("Goal %q reached %.2f of %.2f (%.1f%% short), failure #%d",
		e.GoalName, e.ActualValue, e.TargetValue, e.ShortfallPercentage, e.ConsecutiveFailures)
}

func (e GoalFailed) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e GoalFailed) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e GoalFailed) ActionURL() string     { return "/admin/goals" }
func (e GoalFailed) Target() string        { return e.OwnerID }

func (e GoalFailed) EscalatesToManagers() bool { return e.Critical }

// IsRepeatedFailure reports whether the goal has failed enough times in
// a row to be treated as a pattern
func (e GoalFailed) IsRepeatedFailure() bool { return e.ConsecutiveFailures >= 5 }

func (e GoalFailed) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["goal_id"] = e.GoalID
	f["goal_name"] = e.GoalName
	f["owner_id"] = e.OwnerID
	f["target_value"] = e.TargetValue
	f["actual_value"] = e.ActualValue
	f["critical"] = e.Critical
	f["consecutive_failures"] = e.ConsecutiveFailures
	f["shortfall_percentage"] = e.ShortfallPercentage
	return f
}

// HighValueSale records a sale whose amount crosses the configured
// review threshold.
type HighValueSale struct {
	Meta
	SaleID                        string  `json:"sale_id" validate:"required"`
	ClientID                      string  `json:"client_id" validate:"required"`
	SalespersonID                 string  `json:"salesperson_id" validate:"required"`
	Amount                        float64 `json:"amount" validate:"min=0"`
	ThresholdAmount               float64 `json:"threshold_amount" validate:"min=0"`
	PaymentPending                bool    `json:"payment_pending"`
	ThresholdExceedancePercentage float64 `json:"threshold_exceedance_percentage"`
}

// NewHighValueSale constructs a HighValueSale event. A zero threshold
// yields zero exceedance rather than dividing by zero.
func NewHighValueSale(at time.Time, hs HighValueSale) (*HighValueSale, error) {
	hs.Meta = newMeta(at)
	hs.ThresholdExceedancePercentage = 0
	if hs.ThresholdAmount > 0 && hs.Amount > hs.ThresholdAmount {
		hs.ThresholdExceedancePercentage = (hs.Amount - hs.ThresholdAmount) / hs.ThresholdAmount * 100
	}
	if err := checkFields(hs.Kind(), hs); err != nil {
		return nil, err
	}
	return &hs, nil
}

func (HighValueSale) Kind() string       { return "business.high_value_sale" }
func (HighValueSale) Category() Category { return CategoryBusiness }

func (e HighValueSale) Severity() Severity {
	switch {
	case e.ThresholdExceedancePercentage >= 500:
		return SeverityCritical
	case e.ThresholdExceedancePercentage >= 200:
		return SeverityHigh
	case e.ThresholdExceedancePercentage >= 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e HighValueSale) Title() string {
	return fmt.Sprintf("High-value sale %s (%.2f)", e.SaleID, e.Amount)
}

func (e HighValueSale) Description() string {
	return fmt.Sprintf("Sale %s for client %s closed at %.2f, %.1f%% over the %.2f threshold",
		e.SaleID, e.ClientID, e.Amount, e.ThresholdExceedancePercentage, e.ThresholdAmount)
}

// ShouldSendEmail overrides the default policy: approval-grade sales
// get emailed even below HIGH.
func (e HighValueSale) ShouldSendEmail() bool {
	return defaultShouldEmail(e.Severity()) || e.RequiresApproval()
}

func (e HighValueSale) QueueName() string { return QueueNameFor(e.Category(), e.Severity()) }
func (e HighValueSale) ActionURL() string { return "/admin/sales" }
func (e HighValueSale) Actor() string     { return e.SalespersonID }

// RequiresApproval reports whether the sale needs manager sign-off
func (e HighValueSale) RequiresApproval() bool {
	return e.ThresholdExceedancePercentage >= 100
}

func (e HighValueSale) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["sale_id"] = e.SaleID
	f["client_id"] = e.ClientID
	f["salesperson_id"] = e.SalespersonID
	f["amount"] = e.Amount
	f["threshold_amount"] = e.ThresholdAmount
	f["payment_pending"] = e.PaymentPending
	f["threshold_exceedance_percentage"] = e.ThresholdExceedancePercentage
	return f
}

// PaymentStatusChanged records a sale payment moving between statuses.
type PaymentStatusChanged struct {
	Meta
	SaleID      string     `json:"sale_id" validate:"required"`
	ClientID    string     `json:"client_id" validate:"required"`
	OldStatus   string     `json:"old_status" validate:"required"`
	NewStatus   string     `json:"new_status" validate:"required"`
	Amount      float64    `json:"amount" validate:"min=0"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	DaysOverdue int        `json:"days_overdue"`
}

// NewPaymentStatusChanged constructs a PaymentStatusChanged event and
// derives the overdue age from the due date.
func NewPaymentStatusChanged(at time.Time, pc PaymentStatusChanged) (*PaymentStatusChanged, error) {
	pc.Meta = newMeta(at)
	pc.DaysOverdue = 0
	if pc.DueDate != nil && at.After(*pc.DueDate) {
		pc.DaysOverdue = int(at.Sub(*pc.DueDate).Hours() / 24)
	}
	if err := checkFields(pc.Kind(), pc); err != nil {
		return nil, err
	}
	return &pc, nil
}

func (PaymentStatusChanged) Kind() string       { return "business.payment_status_changed" }
func (PaymentStatusChanged) Category() Category { return CategoryBusiness }

func (e PaymentStatusChanged) Severity() Severity {
	switch {
	case e.IsPaymentFailure() && e.Amount >= 10000:
		return SeverityCritical
	case e.IsPaymentFailure() || e.DaysOverdue > 30:
		return SeverityHigh
	case e.DaysOverdue > 7:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e PaymentStatusChanged) Title() string {
	return fmt.Sprintf("Payment for sale %s: %s -> %s", e.SaleID, e.OldStatus, e.NewStatus)
}

func (e PaymentStatusChanged) Description() string {
	return fmt.Sprintf("Payment of %.2f for sale %s (client %s) moved from %s to %s",
		e.Amount, e.SaleID, e.ClientID, e.OldStatus, e.NewStatus)
}

func (e PaymentStatusChanged) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e PaymentStatusChanged) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e PaymentStatusChanged) ActionURL() string     { return "/admin/payments" }

// IsPaymentFailure reports whether the new status is a failure state
func (e PaymentStatusChanged) IsPaymentFailure() bool {
	return e.NewStatus == "failed" || e.NewStatus == "chargeback"
}

func (e PaymentStatusChanged) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["sale_id"] = e.SaleID
	f["client_id"] = e.ClientID
	f["old_status"] = e.OldStatus
	f["new_status"] = e.NewStatus
	f["amount"] = e.Amount
	f["days_overdue"] = e.DaysOverdue
	f["payment_failure"] = e.IsPaymentFailure()
	return f
}

// UnusualExpense records an expense far outside its category's expected
// amount.
type UnusualExpense struct {
	Meta
	ExpenseID           string  `json:"expense_id" validate:"required"`
	CategoryName        string  `json:"category_name" validate:"required"`
	SubmittedBy         string  `json:"submitted_by" validate:"required"`
	ExpenseAmount       float64 `json:"expense_amount" validate:"min=0"`
	ExpectedAmount      float64 `json:"expected_amount" validate:"min=0"`
	DeviationPercentage float64 `json:"deviation_percentage"`
}

// NewUnusualExpense constructs an UnusualExpense event and precomputes
// the deviation from the expected amount.
func NewUnusualExpense(at time.Time, ue UnusualExpense) (*UnusualExpense, error) {
	ue.Meta = newMeta(at)
	ue.DeviationPercentage = 0
	if ue.ExpectedAmount > 0 {
		ue.DeviationPercentage = (ue.ExpenseAmount - ue.ExpectedAmount) / ue.ExpectedAmount * 100
	}
	if err := checkFields(ue.Kind(), ue); err != nil {
		return nil, err
	}
	return &ue, nil
}

func (UnusualExpense) Kind() string       { return "business.unusual_expense" }
func (UnusualExpense) Category() Category { return CategoryBusiness }

func (e UnusualExpense) Severity() Severity {
	switch {
	case e.DeviationPercentage >= 500:
		return SeverityCritical
	case e.DeviationPercentage >= 200:
		return SeverityHigh
	case e.DeviationPercentage >= 100:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e UnusualExpense) Title() string {
	return fmt.Sprintf("Unusual expense in %s (%.2f)", e.CategoryName, e.ExpenseAmount)
}

func (e UnusualExpense) Description() string {
	return fmt.Sprintf("Expense %s of %.2f in %s deviates %.1f%% from the expected %.2f",
		e.ExpenseID, e.ExpenseAmount, e.CategoryName, e.DeviationPercentage, e.ExpectedAmount)
}

func (e UnusualExpense) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e UnusualExpense) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e UnusualExpense) ActionURL() string     { return "/admin/expenses" }
func (e UnusualExpense) Actor() string         { return e.SubmittedBy }

// ShouldBlockExpense reports whether the expense must be held pending
// approval (deviation at or beyond 500%)
func (e UnusualExpense) ShouldBlockExpense() bool { return e.DeviationPercentage >= 500 }

func (e UnusualExpense) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["expense_id"] = e.ExpenseID
	f["category_name"] = e.CategoryName
	f["submitted_by"] = e.SubmittedBy
	f["expense_amount"] = e.ExpenseAmount
	f["expected_amount"] = e.ExpectedAmount
	f["deviation_percentage"] = e.DeviationPercentage
	return f
}

// ClientDeleted records the removal of a client record.
type ClientDeleted struct {
	Meta
	ClientID      string  `json:"client_id" validate:"required"`
	ClientName    string  `json:"client_name" validate:"required"`
	DeletedBy     string  `json:"deleted_by,omitempty"`
	ActiveSales   int     `json:"active_sales" validate:"min=0"`
	LifetimeValue float64 `json:"lifetime_value" validate:"min=0"`
}

// NewClientDeleted constructs a ClientDeleted event.
func NewClientDeleted(at time.Time, cd ClientDeleted) (*ClientDeleted, error) {
	cd.Meta = newMeta(at)
	if err := checkFields(cd.Kind(), cd); err != nil {
		return nil, err
	}
	return &cd, nil
}

func (ClientDeleted) Kind() string       { return "business.client_deleted" }
func (ClientDeleted) Category() Category { return CategoryBusiness }

func (e ClientDeleted) Severity() Severity {
	switch {
	case e.ActiveSales > 0 && e.LifetimeValue >= 50000:
		return SeverityCritical
	case e.ActiveSales > 0:
		return SeverityHigh
	case e.LifetimeValue >= 10000:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e ClientDeleted) Title() string {
	return fmt.Sprintf("Client %s deleted", e.ClientName)
}

func (e ClientDeleted) Description() string {
	return fmt.Sprintf("Client %s (%s) with %d active sales and %.2f lifetime value was deleted",
		e.ClientName, e.ClientID, e.ActiveSales, e.LifetimeValue)
}

func (e ClientDeleted) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e ClientDeleted) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e ClientDeleted) ActionURL() string     { return "/admin/clients" }
func (e ClientDeleted) Actor() string         { return e.DeletedBy }

func (e ClientDeleted) EscalatesToManagers() bool { return e.ActiveSales > 0 }

func (e ClientDeleted) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["client_id"] = e.ClientID
	f["client_name"] = e.ClientName
	f["deleted_by"] = e.DeletedBy
	f["active_sales"] = e.ActiveSales
	f["lifetime_value"] = e.LifetimeValue
	return f
}
