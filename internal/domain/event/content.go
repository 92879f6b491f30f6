package event

import (
	"fmt"
	"time"
)

// MassContentDeletion records a large batch of content records being
// removed in one operation.
type MassContentDeletion struct {
	Meta
	ContentType          string `json:"content_type" validate:"required"`
	ItemCount            int    `json:"item_count" validate:"min=1"`
	PublishedCount       int    `json:"published_count" validate:"min=0"`
	DeletedBy            string `json:"deleted_by" validate:"required"`
	IPAddress            string `json:"ip_address" validate:"required,ip"`
	OutsideBusinessHours bool   `json:"outside_business_hours"`
}

// NewMassContentDeletion constructs a MassContentDeletion event.
func NewMassContentDeletion(at time.Time, md MassContentDeletion) (*MassContentDeletion, error) {
	md.Meta = newMeta(at)
	if err := checkFields(md.Kind(), md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (MassContentDeletion) Kind() string       { return "content.mass_deletion" }
func (MassContentDeletion) Category() Category { return CategoryContent }

func (e MassContentDeletion) Severity() Severity {
	switch {
	case e.ItemCount >= 100 || e.PublishedCount >= 20:
		return SeverityCritical
	case e.ItemCount >= 50 || e.PublishedCount > 0:
		return SeverityHigh
	case e.ItemCount >= 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e MassContentDeletion) Title() string {
	return fmt.Sprintf("Mass deletion of %d %s items", e.ItemCount, e.ContentType)
}

func (e MassContentDeletion) Description() string {
	return fmt.Sprintf("User %s deleted %d %s items (%d published) from %s",
		e.DeletedBy, e.ItemCount, e.ContentType, e.PublishedCount, e.IPAddress)
}

func (e MassContentDeletion) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e MassContentDeletion) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e MassContentDeletion) ActionURL() string     { return "/admin/content/deletions" }
func (e MassContentDeletion) Actor() string         { return e.DeletedBy }

func (e MassContentDeletion) EscalatesToManagers() bool { return e.PublishedCount > 0 }

// DeletedPublishedContent reports whether live content was removed
func (e MassContentDeletion) DeletedPublishedContent() bool { return e.PublishedCount > 0 }

func (e MassContentDeletion) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["content_type"] = e.ContentType
	f["item_count"] = e.ItemCount
	f["published_count"] = e.PublishedCount
	f["deleted_by"] = e.DeletedBy
	f["ip_address"] = e.IPAddress
	f["outside_business_hours"] = e.OutsideBusinessHours
	return f
}

// BulkOperation records a batch mutation (import, update, delete) over
// many records. FailureRate is derived at construction so the event
// stays a pure value afterwards.
type BulkOperation struct {
	Meta
	OperationType        string  `json:"operation_type" validate:"required"`
	ItemCount            int     `json:"item_count" validate:"min=1"`
	FailureCount         int     `json:"failure_count" validate:"min=0"`
	InitiatedBy          string  `json:"initiated_by" validate:"required"`
	OutsideBusinessHours bool    `json:"outside_business_hours"`
	FailureRate          float64 `json:"failure_rate"`
}

// NewBulkOperation constructs a BulkOperation event and precomputes the
// failure rate.
func NewBulkOperation(at time.Time, bo BulkOperation) (*BulkOperation, error) {
	bo.Meta = newMeta(at)
	bo.FailureRate = 0
	if bo.ItemCount > 0 {
		bo.FailureRate = float64(bo.FailureCount) / float64(bo.ItemCount) * 100
	}
	if err := checkFields(bo.Kind(), bo); err != nil {
		return nil, err
	}
	return &bo, nil
}

func (BulkOperation) Kind() string       { return "content.bulk_operation" }
func (BulkOperation) Category() Category { return CategoryContent }

func (e BulkOperation) Severity() Severity {
	switch {
	case e.FailureRate > 50:
		return SeverityCritical
	case e.FailureRate > 25 || e.ItemCount >= 500:
		return SeverityHigh
	case e.ItemCount >= 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (e BulkOperation) Title() string {
	return fmt.Sprintf("Bulk %s of %d items", e.OperationType, e.ItemCount)
}

func (e BulkOperation) Description() string {
	return fmt.Sprintf("User %s ran a bulk %s over %d items, %d failed (%.1f%%)",
		e.InitiatedBy, e.OperationType, e.ItemCount, e.FailureCount, e.FailureRate)
}

func (e BulkOperation) ShouldSendEmail() bool { return defaultShouldEmail(e.Severity()) }
func (e BulkOperation) QueueName() string     { return QueueNameFor(e.Category(), e.Severity()) }
func (e BulkOperation) ActionURL() string     { return "/admin/content/bulk" }
func (e BulkOperation) Actor() string         { return e.InitiatedBy }

func (e BulkOperation) EscalatesToManagers() bool { return e.IsLargeOperation() }

// IsLargeOperation reports whether the batch is big enough to escalate
func (e BulkOperation) IsLargeOperation() bool { return e.ItemCount >= 100 }

// RequiresRollback reports whether the failure rate crossed the
// rollback threshold (25%)
func (e BulkOperation) RequiresRollback() bool { return e.FailureRate > 25 }

// RequiresReview reports whether the batch size mandates a human review
func (e BulkOperation) RequiresReview() bool { return e.ItemCount >= 50 }

func (e BulkOperation) LogFields() map[string]interface{} {
	f := baseFields(e)
	f["operation_type"] = e.OperationType
	f["item_count"] = e.ItemCount
	f["failure_count"] = e.FailureCount
	f["failure_rate"] = e.FailureRate
	f["initiated_by"] = e.InitiatedBy
	f["outside_business_hours"] = e.OutsideBusinessHours
	return f
}
