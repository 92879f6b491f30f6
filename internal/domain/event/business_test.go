package event

import (
	"testing"
	"time"
)

func TestGoalFailed_Severity(t *testing.T) {
	base := GoalFailed{GoalID: "g1", GoalName: "Q1 revenue", OwnerID: "u1", TargetValue: 100, ActualValue: 60}

	tests := []struct {
		name     string
		critical bool
		streak   int
		want     Severity
	}{
		{name: "critical with long streak", critical: true, streak: 3, want: SeverityCritical},
		{name: "critical first failure", critical: true, streak: 1, want: SeverityHigh},
		{name: "second failure", critical: false, streak: 2, want: SeverityMedium},
		{name: "first failure", critical: false, streak: 1, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			e.Critical = tt.critical
			e.ConsecutiveFailures = tt.streak
			ev, err := NewGoalFailed(testTime, e)
			if err != nil {
				t.Fatalf("NewGoalFailed() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalFailed_Shortfall(t *testing.T) {
	ev, err := NewGoalFailed(testTime, GoalFailed{
		GoalID: "g1", GoalName: "Q1 revenue", OwnerID: "u1",
		TargetValue: 200, ActualValue: 150, ConsecutiveFailures: 1,
	})
	if err != nil {
		t.Fatalf("NewGoalFailed() error = %v", err)
	}
	if ev.ShortfallPercentage != 25 {
		t.Errorf("ShortfallPercentage = %v, want 25", ev.ShortfallPercentage)
	}

	// Zero target never divides by zero.
	zero, err := NewGoalFailed(testTime, GoalFailed{
		GoalID: "g2", GoalName: "untargeted", OwnerID: "u1",
		TargetValue: 0, ActualValue: 0, ConsecutiveFailures: 1,
	})
	if err != nil {
		t.Fatalf("NewGoalFailed() error = %v", err)
	}
	if zero.ShortfallPercentage != 0 {
		t.Errorf("ShortfallPercentage = %v, want 0 for zero target", zero.ShortfallPercentage)
	}
}

func TestHighValueSale_Severity(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		threshold float64
		want      Severity
	}{
		{name: "six times threshold", amount: 60000, threshold: 10000, want: SeverityCritical},
		{name: "triple threshold", amount: 30000, threshold: 10000, want: SeverityHigh},
		{name: "half over threshold", amount: 15000, threshold: 10000, want: SeverityMedium},
		{name: "barely over threshold", amount: 11000, threshold: 10000, want: SeverityLow},
		{name: "zero threshold yields zero exceedance", amount: 50000, threshold: 0, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewHighValueSale(testTime, HighValueSale{
				SaleID: "s1", ClientID: "c1", SalespersonID: "u1",
				Amount: tt.amount, ThresholdAmount: tt.threshold,
			})
			if err != nil {
				t.Fatalf("NewHighValueSale() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHighValueSale_ApprovalEmailOverride(t *testing.T) {
	// Double the threshold: MEDIUM severity, but approval forces email.
	ev, err := NewHighValueSale(testTime, HighValueSale{
		SaleID: "s1", ClientID: "c1", SalespersonID: "u1",
		Amount: 25000, ThresholdAmount: 10000,
	})
	if err != nil {
		t.Fatalf("NewHighValueSale() error = %v", err)
	}

	if ev.Severity() != SeverityMedium {
		t.Fatalf("Severity() = %v, want medium", ev.Severity())
	}
	if !ev.RequiresApproval() {
		t.Error("RequiresApproval() = false at 150% exceedance")
	}
	if !ev.ShouldSendEmail() {
		t.Error("ShouldSendEmail() = false for approval-grade sale")
	}
}

func TestPaymentStatusChanged_DaysOverdue(t *testing.T) {
	due := testTime.Add(-10 * 24 * time.Hour)

	ev, err := NewPaymentStatusChanged(testTime, PaymentStatusChanged{
		SaleID: "s1", ClientID: "c1", OldStatus: "pending", NewStatus: "overdue",
		Amount: 500, DueDate: &due,
	})
	if err != nil {
		t.Fatalf("NewPaymentStatusChanged() error = %v", err)
	}

	if ev.DaysOverdue != 10 {
		t.Errorf("DaysOverdue = %d, want 10", ev.DaysOverdue)
	}
	if ev.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want medium for 10 days overdue", ev.Severity())
	}
}

func TestPaymentStatusChanged_Severity(t *testing.T) {
	tests := []struct {
		name      string
		newStatus string
		amount    float64
		want      Severity
	}{
		{name: "large chargeback", newStatus: "chargeback", amount: 15000, want: SeverityCritical},
		{name: "large failure", newStatus: "failed", amount: 10000, want: SeverityCritical},
		{name: "small failure", newStatus: "failed", amount: 100, want: SeverityHigh},
		{name: "ordinary transition", newStatus: "paid", amount: 100, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewPaymentStatusChanged(testTime, PaymentStatusChanged{
				SaleID: "s1", ClientID: "c1", OldStatus: "pending", NewStatus: tt.newStatus, Amount: tt.amount,
			})
			if err != nil {
				t.Fatalf("NewPaymentStatusChanged() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnusualExpense_Deviation(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		expected  float64
		wantSev   Severity
		wantBlock bool
	}{
		{name: "six times expected", amount: 600, expected: 100, wantSev: SeverityCritical, wantBlock: true},
		{name: "triple expected", amount: 400, expected: 100, wantSev: SeverityHigh, wantBlock: false},
		{name: "double expected", amount: 250, expected: 100, wantSev: SeverityMedium, wantBlock: false},
		{name: "near expected", amount: 120, expected: 100, wantSev: SeverityLow, wantBlock: false},
		{name: "no baseline", amount: 10000, expected: 0, wantSev: SeverityLow, wantBlock: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewUnusualExpense(testTime, UnusualExpense{
				ExpenseID: "e1", CategoryName: "travel", SubmittedBy: "u1",
				ExpenseAmount: tt.amount, ExpectedAmount: tt.expected,
			})
			if err != nil {
				t.Fatalf("NewUnusualExpense() error = %v", err)
			}
			if got := ev.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if got := ev.ShouldBlockExpense(); got != tt.wantBlock {
				t.Errorf("ShouldBlockExpense() = %v, want %v", got, tt.wantBlock)
			}
		})
	}
}

func TestClientDeleted_Severity(t *testing.T) {
	tests := []struct {
		name     string
		active   int
		lifetime float64
		want     Severity
	}{
		{name: "active sales and large value", active: 2, lifetime: 60000, want: SeverityCritical},
		{name: "active sales only", active: 1, lifetime: 500, want: SeverityHigh},
		{name: "large value only", active: 0, lifetime: 20000, want: SeverityMedium},
		{name: "dormant small client", active: 0, lifetime: 500, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewClientDeleted(testTime, ClientDeleted{
				ClientID: "c1", ClientName: "Acme", DeletedBy: "u1",
				ActiveSales: tt.active, LifetimeValue: tt.lifetime,
			})
			if err != nil {
				t.Fatalf("NewClientDeleted() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}
