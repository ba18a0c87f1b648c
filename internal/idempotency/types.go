package idempotency

import (
	"encoding/json"
	"time"
)

// Status values for idempotency entries.
//
// IN_PROGRESS: the booking row exists and the enqueue has not finished.
// DONE: a response is stored and replayed to every retry.
// FAILED: the booking row exists but the enqueue failed; a retry re-sends it.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// IdempotencyRecord is the shape persisted in the idempotency DynamoDB table.
type IdempotencyRecord struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	BookingID      string    `dynamodbav:"booking_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// StoredResponse returns the status and JSON body recorded by MarkDone.
// ok is false unless the record is DONE with a valid JSON body.
func (r *IdempotencyRecord) StoredResponse() (status int, body []byte, ok bool) {
	if r == nil || r.Status != StatusDone || r.ResponseBody == "" {
		return 0, nil, false
	}
	body = []byte(r.ResponseBody)
	if !json.Valid(body) {
		return 0, nil, false
	}
	status = r.ResponseStatus
	if status == 0 {
		status = 200
	}
	return status, body, true
}
