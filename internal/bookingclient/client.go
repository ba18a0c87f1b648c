package bookingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/booking"
)

// RequestTimeout bounds a single submit call.
const RequestTimeout = 15 * time.Second

// RejectedError is a 400 from the booking service. Fields maps a json path
// such as "bookingData.email" to the rule it broke.
type RejectedError struct {
	Code   string
	Fields map[string]string
}

func (e *RejectedError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("booking rejected: %s", e.Code)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("booking rejected: %s (%s)", e.Code, strings.Join(keys, ", "))
}

// StatusError is any other non-success response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("booking service returned %d: %s", e.StatusCode, e.Body)
}

// Client submits bookings to the booking service's POST /bookings.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New returns a Client for the service at baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: RequestTimeout},
		logger:  logger,
	}
}

// WithTimeout bounds each submit call by d instead of RequestTimeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.http.Timeout = d
	}
	return c
}

// WithHTTPClient swaps the transport, e.g. for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields"`
	BookingID string            `json:"bookingId"`
}

// Submit implements booking.Submitter. A 202 means an attempt with the same
// key is still being recorded; it is returned as a confirmation with status
// IN_PROGRESS.
func (c *Client) Submit(ctx context.Context, idempotencyKey string, sub booking.Submission) (*booking.Confirmation, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post booking: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("booking service responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("idempotency_key", idempotencyKey))

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var conf booking.Confirmation
		if err := json.Unmarshal(raw, &conf); err != nil {
			return nil, fmt.Errorf("decode confirmation: %w", err)
		}
		return &conf, nil
	case http.StatusAccepted:
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return &booking.Confirmation{BookingID: eb.BookingID, Status: "IN_PROGRESS"}, nil
	case http.StatusBadRequest:
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
		}
		return nil, &RejectedError{Code: eb.Error, Fields: eb.Fields}
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
}
