package event

import (
	"encoding/json"
	"fmt"

	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

// Envelope is the wire form of an event on a queue lane. Kind selects
// the variant; Payload is the variant's JSON encoding.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes an event into its envelope form.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Internal("failed to encode event payload", err)
	}
	data, err := json.Marshal(Envelope{Kind: ev.Kind(), Payload: payload})
	if err != nil {
		return nil, errors.Internal("failed to encode event envelope", err)
	}
	return data, nil
}

// Decode deserializes an envelope back into its concrete variant.
// Unknown kinds are a classification error so redelivery does not loop
// on an undecodable message forever.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Classification("malformed event envelope", err.Error())
	}

	var ev Event
	switch env.Kind {
	case FailedLogin{}.Kind():
		ev = decodeInto(env.Payload, &FailedLogin{})
	case AccessViolation{}.Kind():
		ev = decodeInto(env.Payload, &AccessViolation{})
	case AdminAccountModified{}.Kind():
		ev = decodeInto(env.Payload, &AdminAccountModified{})
	case SuspiciousSession{}.Kind():
		ev = decodeInto(env.Payload, &SuspiciousSession{})
	case AccountDeleted{}.Kind():
		ev = decodeInto(env.Payload, &AccountDeleted{})
	case MassContentDeletion{}.Kind():
		ev = decodeInto(env.Payload, &MassContentDeletion{})
	case BulkOperation{}.Kind():
		ev = decodeInto(env.Payload, &BulkOperation{})
	case GoalFailed{}.Kind():
		ev = decodeInto(env.Payload, &GoalFailed{})
	case HighValueSale{}.Kind():
		ev = decodeInto(env.Payload, &HighValueSale{})
	case PaymentStatusChanged{}.Kind():
		ev = decodeInto(env.Payload, &PaymentStatusChanged{})
	case UnusualExpense{}.Kind():
		ev = decodeInto(env.Payload, &UnusualExpense{})
	case ClientDeleted{}.Kind():
		ev = decodeInto(env.Payload, &ClientDeleted{})
	case DatabaseFailure{}.Kind():
		ev = decodeInto(env.Payload, &DatabaseFailure{})
	case FileUploadFailure{}.Kind():
		ev = decodeInto(env.Payload, &FileUploadFailure{})
	case PerformanceIssue{}.Kind():
		ev = decodeInto(env.Payload, &PerformanceIssue{})
	case QueueFailure{}.Kind():
		ev = decodeInto(env.Payload, &QueueFailure{})
	default:
		return nil, errors.Classification(fmt.Sprintf("unknown event kind %q", env.Kind), nil)
	}

	if ev == nil {
		return nil, errors.Classification(fmt.Sprintf("malformed %s payload", env.Kind), nil)
	}
	return ev, nil
}

func decodeInto(payload json.RawMessage, ev Event) Event {
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil
	}
	return ev
}
