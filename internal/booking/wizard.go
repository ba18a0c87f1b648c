package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/cart"
)

// Wizard walks one line item through DateTime -> Location -> Details ->
// Confirm. It holds its own copy of the item, so nothing it does can change a
// cart.
type Wizard struct {
	mu sync.Mutex

	item           cart.LineItem
	quantity       int
	draft          Draft
	step           Step
	dates          []time.Time
	idempotencyKey string

	submitter  Submitter
	submitting bool
	closed     bool

	logger *zap.Logger
}

// Summary is the read-only view rendered on the confirm step.
type Summary struct {
	Service       cart.LineItem `json:"service"`
	Quantity      int           `json:"quantity"`
	UnitPrice     float64       `json:"unitPrice"`
	TotalPrice    float64       `json:"totalPrice"`
	DateLabel     string        `json:"dateLabel"`
	TimeLabel     string        `json:"timeLabel"`
	LocationLabel string        `json:"locationLabel"`
	PaymentLabel  string        `json:"paymentLabel"`
	BookingData   BookingData   `json:"bookingData"`
}

// View is a point-in-time snapshot of the wizard for rendering.
type View struct {
	Step          Step       `json:"step"`
	StepName      string     `json:"stepName"`
	Draft         Draft      `json:"draft"`
	MissingFields []string   `json:"missingFields"`
	CanAdvance    bool       `json:"canAdvance"`
	CanSubmit     bool       `json:"canSubmit"`
	EligibleDates []string   `json:"eligibleDates"`
	TimeSlots     []TimeSlot `json:"timeSlots"`
	Summary       *Summary   `json:"summary,omitempty"`
	Closed        bool       `json:"closed"`
}

// Open starts a wizard at the first step for quantity units of item.
// now fixes the eligible date window for the life of the wizard.
func Open(item cart.LineItem, quantity int, now time.Time, submitter Submitter, logger *zap.Logger) *Wizard {
	if quantity < 1 {
		quantity = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	key := uuid.NewString()
	return &Wizard{
		item:           item,
		quantity:       quantity,
		draft:          newDraft(),
		step:           StepDateTime,
		dates:          EligibleDates(now),
		idempotencyKey: key,
		submitter:      submitter,
		logger:         logger.With(zap.String("service_id", item.ID), zap.String("idempotency_key", key)),
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the form state.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// IdempotencyKey is the key sent with every submit attempt of this wizard.
func (w *Wizard) IdempotencyKey() string {
	return w.idempotencyKey
}

// Closed reports whether the wizard was closed or submitted.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Apply updates draft fields. Fields collected by a step after the current
// one are rejected, as are values outside the offered dates, slots and enums.
// Nothing is changed when any field is rejected.
func (w *Wizard) Apply(p DraftPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWizardClosed
	}
	if w.submitting {
		return ErrSubmitInProgress
	}
	for _, f := range p.fields() {
		if fieldStep[f] > w.step {
			return fmt.Errorf("%w: %s", ErrFieldLocked, f)
		}
	}
	if p.SelectedDate != nil && *p.SelectedDate != "" && !w.isEligibleDate(*p.SelectedDate) {
		return fmt.Errorf("%w: %s", ErrIneligibleDate, *p.SelectedDate)
	}
	if p.SelectedTime != nil && *p.SelectedTime != "" && !IsTimeSlot(*p.SelectedTime) {
		return fmt.Errorf("%w: %s", ErrUnknownTimeSlot, *p.SelectedTime)
	}
	if p.ServiceLocation != nil && !p.ServiceLocation.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidLocation, *p.ServiceLocation)
	}
	if p.PaymentMethod != nil && !p.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPayment, *p.PaymentMethod)
	}

	p.applyTo(&w.draft)
	return nil
}

// Next moves forward one step when the current step's gate passes. It reports
// whether the wizard moved.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.submitting || !CanAdvance(w.step, w.draft) {
		return false
	}
	w.step++
	w.logger.Debug("booking wizard advanced", zap.Stringer("step", w.step))
	return true
}

// Previous moves back one step. It reports whether the wizard moved.
func (w *Wizard) Previous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.submitting || w.step <= StepDateTime {
		return false
	}
	w.step--
	return true
}

// Close discards the draft. It is safe to call more than once.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.close()
}

// Summary builds the confirm-step view from the draft and the item.
func (w *Wizard) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary()
}

// View snapshots the wizard for rendering.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Step:          w.step,
		StepName:      w.step.String(),
		Draft:         w.draft,
		MissingFields: MissingFields(w.step, w.draft),
		CanAdvance:    !w.closed && !w.submitting && CanAdvance(w.step, w.draft),
		CanSubmit:     w.canSubmit() == nil,
		EligibleDates: FormatDates(w.dates),
		TimeSlots:     TimeSlots,
		Closed:        w.closed,
	}
	if v.MissingFields == nil {
		v.MissingFields = []string{}
	}
	if w.step == StepConfirm {
		s := w.summary()
		v.Summary = &s
	}
	return v
}

// Submit hands the completed booking to the submitter. Submit stays disabled
// while a call is in flight. On success the wizard closes; on failure it stays
// on the confirm step and may be submitted again with the same key.
func (w *Wizard) Submit(ctx context.Context) (*Confirmation, error) {
	w.mu.Lock()
	if err := w.canSubmit(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	sub := w.submission()
	submitter := w.submitter
	w.submitting = true
	w.mu.Unlock()

	conf, err := submitter.Submit(ctx, w.idempotencyKey, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.logger.Warn("booking submission failed", zap.Error(err))
		return nil, fmt.Errorf("submit booking: %w", err)
	}
	if conf == nil {
		conf = &Confirmation{}
	}
	w.logger.Info("booking submitted", zap.String("booking_id", conf.BookingID), zap.String("status", conf.Status))
	w.close()
	return conf, nil
}

// canSubmit must be called with mu held.
func (w *Wizard) canSubmit() error {
	if w.closed {
		return ErrWizardClosed
	}
	if w.step != StepConfirm {
		return ErrNotAtConfirm
	}
	if w.submitting {
		return ErrSubmitInProgress
	}
	for s := StepDateTime; s < StepConfirm; s++ {
		if missing := MissingFields(s, w.draft); len(missing) > 0 {
			return &GateError{Step: s, Missing: missing}
		}
	}
	if w.submitter == nil {
		return ErrNoSubmitter
	}
	return nil
}

func (w *Wizard) submission() Submission {
	return Submission{
		Service:     w.item,
		ServiceID:   w.item.ID,
		Quantity:    w.quantity,
		TotalPrice:  w.item.Price * float64(w.quantity),
		BookingData: bookingDataFrom(w.draft),
	}
}

func (w *Wizard) summary() Summary {
	s := Summary{
		Service:       w.item,
		Quantity:      w.quantity,
		UnitPrice:     w.item.Price,
		TotalPrice:    w.item.Price * float64(w.quantity),
		LocationLabel: w.draft.ServiceLocation.Label(),
		PaymentLabel:  w.draft.PaymentMethod.Label(),
		BookingData:   bookingDataFrom(w.draft),
	}
	s.Service.Quantity = w.quantity
	if d, err := time.Parse(DateLayout, w.draft.SelectedDate); err == nil {
		s.DateLabel = d.Format(DateLabelLayout)
	}
	s.TimeLabel, _ = TimeSlotLabel(w.draft.SelectedTime)
	return s
}

func (w *Wizard) isEligibleDate(date string) bool {
	for _, d := range w.dates {
		if d.Format(DateLayout) == date {
			return true
		}
	}
	return false
}

func (w *Wizard) close() {
	if w.closed {
		return
	}
	w.closed = true
	w.draft = Draft{}
}
