package event

import "testing"

func TestDatabaseFailure_Severity(t *testing.T) {
	tests := []struct {
		name      string
		recovered bool
		count     int
		want      Severity
	}{
		{name: "unrecovered", recovered: false, count: 1, want: SeverityCritical},
		{name: "five failures", recovered: true, count: 5, want: SeverityCritical},
		{name: "two failures", recovered: true, count: 2, want: SeverityHigh},
		{name: "single recovered failure", recovered: true, count: 1, want: SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewDatabaseFailure(testTime, DatabaseFailure{
				Operation: "insert", Table: "sales", ErrMessage: "deadlock",
				Recovered: tt.recovered, FailureCount: tt.count,
			})
			if err != nil {
				t.Fatalf("NewDatabaseFailure() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatabaseFailure_AlwaysEmails(t *testing.T) {
	// A single recovered failure is only MEDIUM yet still emails.
	ev, err := NewDatabaseFailure(testTime, DatabaseFailure{
		Operation: "query", ErrMessage: "timeout", Recovered: true, FailureCount: 1,
	})
	if err != nil {
		t.Fatalf("NewDatabaseFailure() error = %v", err)
	}
	if !ev.ShouldSendEmail() {
		t.Error("ShouldSendEmail() = false for database failure")
	}
}

func TestFileUploadFailure_Severity(t *testing.T) {
	tests := []struct {
		name        string
		storageFull bool
		streak      int
		want        Severity
	}{
		{name: "storage full", storageFull: true, streak: 1, want: SeverityCritical},
		{name: "ten in a row", storageFull: false, streak: 10, want: SeverityHigh},
		{name: "three in a row", storageFull: false, streak: 3, want: SeverityMedium},
		{name: "single failure", storageFull: false, streak: 1, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewFileUploadFailure(testTime, FileUploadFailure{
				FileName: "report.pdf", SizeBytes: 1024, UserID: "u1", Reason: "io error",
				ConsecutiveFailures: tt.streak, StorageFull: tt.storageFull,
			})
			if err != nil {
				t.Fatalf("NewFileUploadFailure() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerformanceIssue_Exceedance(t *testing.T) {
	tests := []struct {
		name      string
		latency   int64
		threshold int64
		errRate   float64
		wantPct   float64
		wantSev   Severity
	}{
		{name: "half of requests failing", latency: 100, threshold: 100, errRate: 50, wantPct: 0, wantSev: SeverityCritical},
		{name: "four times budget", latency: 400, threshold: 100, errRate: 0, wantPct: 300, wantSev: SeverityHigh},
		{name: "elevated error rate", latency: 100, threshold: 100, errRate: 10, wantPct: 0, wantSev: SeverityHigh},
		{name: "double budget", latency: 200, threshold: 100, errRate: 0, wantPct: 100, wantSev: SeverityMedium},
		{name: "within budget", latency: 80, threshold: 100, errRate: 0, wantPct: 0, wantSev: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewPerformanceIssue(testTime, PerformanceIssue{
				Endpoint: "/api/sales", LatencyMillis: tt.latency, ThresholdMillis: tt.threshold, ErrorRate: tt.errRate,
			})
			if err != nil {
				t.Fatalf("NewPerformanceIssue() error = %v", err)
			}
			if ev.ThresholdExceedancePercentage != tt.wantPct {
				t.Errorf("ThresholdExceedancePercentage = %v, want %v", ev.ThresholdExceedancePercentage, tt.wantPct)
			}
			if got := ev.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
		})
	}
}

func TestQueueFailure_Severity(t *testing.T) {
	tests := []struct {
		name     string
		failed   int
		attempts int
		want     Severity
	}{
		{name: "hundred failed jobs", failed: 100, attempts: 1, want: SeverityCritical},
		{name: "twenty failed jobs", failed: 20, attempts: 1, want: SeverityHigh},
		{name: "exhausted retries", failed: 5, attempts: 5, want: SeverityHigh},
		{name: "five failed jobs", failed: 5, attempts: 1, want: SeverityMedium},
		{name: "one failed job", failed: 1, attempts: 1, want: SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewQueueFailure(testTime, QueueFailure{
				Lane: "exports", JobName: "export-csv", ErrMessage: "oom",
				Attempts: tt.attempts, FailedJobs: tt.failed,
			})
			if err != nil {
				t.Fatalf("NewQueueFailure() error = %v", err)
			}
			if got := ev.Severity(); got != tt.want {
				t.Errorf("Severity() = %v, want %v", got, tt.want)
			}
		})
	}
}
