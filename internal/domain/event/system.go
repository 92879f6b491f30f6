package event

import (
	"fmt"
	"time"
)

// DatabaseFailure records a failed database operation.
type DatabaseFailure struct {
	Meta
	Operation    string `json:"operation" validate:"required"`
	Table        string `json:"table,omitempty"`
	ErrMessage   string `json:"error_message" validate:"required"`
	Recovered    bool   `json:"recovered"`
	FailureCount int    `json:"failure_count" validate:"min=1"`
}

// NewDatabaseFailure constructs a DatabaseFailure event.
func NewDatabaseFailure(at time.Time, df DatabaseFailure) (*DatabaseFailure, error) {
	df.Meta = newMeta(at)
	if err := checkFields(df.Kind(), df); err != nil {
		return nil, err
	}
	return &df, nil
}

func (DatabaseFailure) Kind() string       { return "system.database_failure" }
func (DatabaseFailure) Category() Category { return CategorySystem }

func (e DatabaseFailure) Severity() Severity {
	switch {
	case !e.Recovered || e.FailureCount >= 5:
		return SeverityCritical
	case e.FailureCount >= 2:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func (e DatabaseFailure) Title() string {
	return fmt.Sprintf("Database %s failure", e.Operation)
}

func (e DatabaseFailure) Description() string {
	target := e.Table
	if target == "" {
		target = "unknown table"
	}
	return fmt.Sprintf("Database %s on %s failed %d time(s): %s",
		e.Operation, target, e.FailureCount, e.ErrMessage)
}

// ShouldSendEmail overrides the default policy: operators are always
// emailed about database failures.
func (e DatabaseFailure) ShouldSendEmail() bool { return true }

func (e DatabaseFailure) QueueName() string { return QueueNameFor(e.Category(), e.Severity()) }
func (e DatabaseFailure) ActionURL() string { return "/admin/system/database" }

func (e DatabaseFailure) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["operation"] = e.Operation
	f["table"] = e.Table
	f["error_message"] = e.ErrMessage
	f["recovered"] = e.Recovered
	f["failure_count"] = e.FailureCount
	return f
}

// FileUploadFailure records a failed file upload.
type FileUploadFailure struct {
	Meta
	FileName            string `json:"file_name" validate:"required"`
	SizeBytes           int64  `json:"size_bytes" validate:"min=0"`
	UserID              string `json:"user_id" validate:"required"`
	Reason              string `json:"reason" validate:"required"`
	ConsecutiveFailures int    `json:"consecutive_failures" validate:"min=1"`
	StorageFull         bool   `json:"storage_full"`
}

// NewFileUploadFailure constructs a FileUploadFailure event.
func NewFileUploadFailure(at time.Time, uf FileUploadFailure) (*FileUploadFailure, error) {
	uf.Meta = newMeta(at)
	if err := checkFields(uf.Kind(), uf); err != nil {
		return nil, err
	}
	return &uf, nil
}

func (FileUploadFailure) Kind() string       { return "system.file_upload_failure" }
func (FileUploadFailure) Category() Category { return CategorySystem }

func (e FileUploadFailure) Severity() Severity {
	switch {
	case e.StorageFull:
		return SeverityCritical
	case e.ConsecutiveFailures >= 10:
		return SeverityHigh
	case e.ConsecutiveFailures >= 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e FileUploadFailure) Title() string {
	return fmt.Sprintf("Upload of %s failed", e.FileName)
}

func (e FileUploadFailure) Description() string {
	return fmt.Sprintf("Upload of %s (%d bytes) by user %s failed: %s (failure #%d)",
		e.FileName, e.SizeBytes, e.UserID, e.Reason, e.ConsecutiveFailures)
}

func (e FileUploadFailure) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e FileUploadFailure) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e FileUploadFailure) ActionURL() string     { return "/admin/system/uploads" }
func (e FileUploadFailure) Actor() string         { return e.UserID }

func (e FileUploadFailure) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["file_name"] = e.FileName
	f["size_bytes"] = e.SizeBytes
	f["user_id"] = e.UserID
	f["reason"] = e.Reason
	f["consecutive_failures"] = e.ConsecutiveFailures
	f["storage_full"] = e.StorageFull
	return f
}

// PerformanceIssue records an endpoint breaching its latency budget.
// ThresholdExceedancePercentage is derived at construction.
type PerformanceIssue struct {
	Meta
	Endpoint                      string  `json:"endpoint" validate:"required"`
	LatencyMillis                 int64   `json:"latency_millis" validate:"min=1"`
	ThresholdMillis               int64   `json:"threshold_millis" validate:"min=1"`
	ErrorRate                     float64 `json:"error_rate" validate:"min=0,max=100"`
	ThresholdExceedancePercentage float64 `json:"threshold_exceedance_percentage"`
}

// NewPerformanceIssue constructs a PerformanceIssue event.
func NewPerformanceIssue(at time.Time, pi PerformanceIssue) (*PerformanceIssue, error) {
	pi.Meta = newMeta(at)
	pi.ThresholdExceedancePercentage = 0
	if pi.ThresholdMillis > 0 && pi.LatencyMillis > pi.ThresholdMillis {
		pi.ThresholdExceedancePercentage = float64(pi.LatencyMillis-pi.ThresholdMillis) / float64(pi.ThresholdMillis) * 100
	}
	if err := checkFields(pi.Kind(), pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (PerformanceIssue) Kind() string       { return "system.performance_issue" }
func (PerformanceIssue) Category() Category { return CategorySystem }

func (e PerformanceIssue) Severity() Severity {
	switch {
	case e.ErrorRate >= 50:
		return SeverityCritical
	case e.ThresholdExceedancePercentage >= 300 || e.ErrorRate >= 10:
		return SeverityHigh
	case e.ThresholdExceedancePercentage >= 100:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e PerformanceIssue) Title() string {
	return fmt.Sprintf("Performance degradation on %s", e.Endpoint)
}

func (e PerformanceIssue) Description() string {
	return fmt.Sprintf("%s responded in %dms against a %dms budget (%.1f%% over), error rate %.1f%%",
		e.Endpoint, e.LatencyMillis, e.ThresholdMillis, e.ThresholdExceedancePercentage, e.ErrorRate)
}

func (e PerformanceIssue) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e PerformanceIssue) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e PerformanceIssue) ActionURL() string     { return "/admin/system/performance" }

func (e PerformanceIssue) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["endpoint"] = e.Endpoint
	f["latency_millis"] = e.LatencyMillis
	f["threshold_millis"] = e.ThresholdMillis
	f["error_rate"] = e.ErrorRate
	f["threshold_exceedance_percentage"] = e.ThresholdExceedancePercentage
	return f
}

// QueueFailure records jobs failing on a background queue.
type QueueFailure struct {
	Meta
	Lane       string `json:"lane" validate:"required"`
	JobName    string `json:"job_name" validate:"required"`
	ErrMessage string `json:"error_message" validate:"required"`
	Attempts   int    `json:"attempts" validate:"min=1"`
	FailedJobs int    `json:"failed_jobs" validate:"min=1"`
}

// NewQueueFailure constructs a QueueFailure event.
func NewQueueFailure(at time.Time, qf QueueFailure) (*QueueFailure, error) {
	qf.Meta = newMeta(at)
	if err := checkFields(qf.Kind(), qf); err != nil {
		return nil, err
	}
	return &qf, nil
}

func (QueueFailure) Kind() string       { return "system.queue_failure" }
func (QueueFailure) Category() Category { return CategorySystem }

func (e QueueFailure) Severity() Severity {
	switch {
	case e.FailedJobs >= 100:
		return SeverityCritical
	case e.FailedJobs >= 20 || e.Attempts >= 5:
		return SeverityHigh
	case e.FailedJobs >= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e QueueFailure) Title() string {
	return fmt.Sprintf("Job failures on queue %s", e.Lane)
}

func (e QueueFailure) Description() string {
	return fmt.Sprintf("Job %s on queue %s failed after %d attempt(s), %d jobs failed: %s",
		e.JobName, e.Lane, e.Attempts, e.FailedJobs, e.ErrMessage)
}

func (e QueueFailure) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e QueueFailure) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e QueueFailure) ActionURL() string     { return "/admin/system/queues" }

func (e QueueFailure) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["lane"] = e.Lane
	f["job_name"] = e.JobName
	f["error_message"] = e.ErrMessage
	f["attempts"] = e.Attempts
	f["failed_jobs"] = e.FailedJobs
	return f
}
