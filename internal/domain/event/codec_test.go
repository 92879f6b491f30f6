package event

import (
	"testing"

	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

func TestCodec_RoundTrip(t *testing.T) {
	original, err := NewAccessViolation(testTime, AccessViolation{
		UserID: "u1", Resource: "/admin/keys", Action: "write", IPAddress: "10.0.0.2",
		PrivilegeEscalation: true, RecentViolations: 2,
	})
	if err != nil {
		t.Fatalf("NewAccessViolation() error = %v", err)
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, ok := decoded.(*AccessViolation)
	if !ok {
		t.Fatalf("Decode() returned %T, want *AccessViolation", decoded)
	}

	if got.ID() != original.ID() {
		t.Errorf("ID = %q, want %q", got.ID(), original.ID())
	}
	if !got.OccurredAt().Equal(original.OccurredAt()) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt(), original.OccurredAt())
	}
	if got.Severity() != original.Severity() {
		t.Errorf("Severity = %v, want %v", got.Severity(), original.Severity())
	}
	if got.RiskScore() != original.RiskScore() {
		t.Errorf("RiskScore = %d, want %d", got.RiskScore(), original.RiskScore())
	}
}

func TestCodec_DerivedFieldsSurviveTransport(t *testing.T) {
	// FailureRate is computed once at construction; the consumer side
	// must see the same value without recomputing.
	original, err := NewBulkOperation(testTime, BulkOperation{
		OperationType: "import", ItemCount: 200, FailureCount: 80, InitiatedBy: "u1",
	})
	if err != nil {
		t.Fatalf("NewBulkOperation() error = %v", err)
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got := decoded.(*BulkOperation)
	if got.FailureRate != 40 {
		t.Errorf("FailureRate = %v, want 40", got.FailureRate)
	}
	if !got.RequiresRollback() {
		t.Error("RequiresRollback() = false after transport")
	}
}

func TestCodec_UnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind":"security.unknown","payload":{}}`))
	if err == nil {
		t.Fatal("Decode() expected error for unknown kind")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Decode() error type = %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeClassification {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeClassification)
	}
}

func TestCodec_MalformedEnvelope(t *testing.T) {
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("Decode() expected error for malformed envelope")
	}
}

func TestCodec_EveryKindRegistered(t *testing.T) {
	events := []Event{
		must(NewFailedLogin(testTime, FailedLogin{Email: "a@example.com", IPAddress: "10.0.0.1", Attempts: 1, WindowMinutes: 5})),
		must(NewAccessViolation(testTime, AccessViolation{UserID: "u1", Resource: "r", Action: "a", IPAddress: "10.0.0.1"})),
		must(NewAdminAccountModified(testTime, AdminAccountModified{TargetUserID: "u1", ModifiedBy: "u2", ChangedFields: []string{"email"}})),
		must(NewSuspiciousSession(testTime, SuspiciousSession{SessionID: "s1", UserID: "u1", IPAddress: "10.0.0.1"})),
		must(NewAccountDeleted(testTime, AccountDeleted{TargetUserID: "u1", TargetEmail: "a@example.com"})),
		must(NewMassContentDeletion(testTime, MassContentDeletion{ContentType: "post", ItemCount: 1, DeletedBy: "u1", IPAddress: "10.0.0.1"})),
		must(NewBulkOperation(testTime, BulkOperation{OperationType: "import", ItemCount: 1, InitiatedBy: "u1"})),
		must(NewGoalFailed(testTime, GoalFailed{GoalID: "g", GoalName: "g", OwnerID: "u1", ConsecutiveFailures: 1})),
		must(NewHighValueSale(testTime, HighValueSale{SaleID: "s", ClientID: "c", SalespersonID: "u1", Amount: 1, ThresholdAmount: 1})),
		must(NewPaymentStatusChanged(testTime, PaymentStatusChanged{SaleID: "s", ClientID: "c", OldStatus: "a", NewStatus: "b"})),
		must(NewUnusualExpense(testTime, UnusualExpense{ExpenseID: "e", CategoryName: "c", SubmittedBy: "u1"})),
		must(NewClientDeleted(testTime, ClientDeleted{ClientID: "c", ClientName: "n"})),
		must(NewDatabaseFailure(testTime, DatabaseFailure{Operation: "o", ErrMessage: "e", FailureCount: 1})),
		must(NewFileUploadFailure(testTime, FileUploadFailure{FileName: "f", UserID: "u1", Reason: "r", ConsecutiveFailures: 1})),
		must(NewPerformanceIssue(testTime, PerformanceIssue{Endpoint: "/x", LatencyMillis: 1, ThresholdMillis: 1})),
		must(NewQueueFailure(testTime, QueueFailure{Lane: "l", JobName: "j", ErrMessage: "e", Attempts: 1, FailedJobs: 1})),
	}

	for _, ev := range events {
		t.Run(ev.Kind(), func(t *testing.T) {
			data, err := Encode(ev)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if decoded.Kind() != ev.Kind() {
				t.Errorf("Kind = %q, want %q", decoded.Kind(), ev.Kind())
			}
		})
	}
}

func must[E Event](ev E, err error) E {
	if err != nil {
		panic(err)
	}
	return ev
}
