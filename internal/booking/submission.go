package booking

import (
	"context"

	"github.com/imrishuroy/go-salon-bookings/internal/cart"
)

// BookingData is the draft as sent to the booking service. Address fields are
// only carried for home visits.
type BookingData struct {
	SelectedDate        string          `json:"selectedDate"`
	SelectedTime        string          `json:"selectedTime"`
	ServiceLocation     ServiceLocation `json:"serviceLocation"`
	Address             string          `json:"address,omitempty"`
	City                string          `json:"city,omitempty"`
	Pincode             string          `json:"pincode,omitempty"`
	FullName            string          `json:"fullName"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
}

func bookingDataFrom(d Draft) BookingData {
	bd := BookingData{
		SelectedDate:        d.SelectedDate,
		SelectedTime:        d.SelectedTime,
		ServiceLocation:     d.ServiceLocation,
		FullName:            d.FullName,
		Phone:               d.Phone,
		Email:               d.Email,
		SpecialInstructions: d.SpecialInstructions,
		PaymentMethod:       d.PaymentMethod,
	}
	if d.ServiceLocation == LocationHome {
		bd.Address = d.Address
		bd.City = d.City
		bd.Pincode = d.Pincode
	}
	return bd
}

// Submission is what a completed wizard produces.
type Submission struct {
	Service     cart.LineItem `json:"-"`
	ServiceID   string        `json:"serviceId"`
	Quantity    int           `json:"quantity"`
	TotalPrice  float64       `json:"totalPrice"`
	BookingData BookingData   `json:"bookingData"`
}

// Confirmation is the booking service's acknowledgement of a submission.
type Confirmation struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

// Submitter commits a submission. idempotencyKey is stable for all attempts
// of one wizard, so retrying after a failure cannot double-book.
type Submitter interface {
	Submit(ctx context.Context, idempotencyKey string, sub Submission) (*Confirmation, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, idempotencyKey string, sub Submission) (*Confirmation, error)

func (f SubmitterFunc) Submit(ctx context.Context, idempotencyKey string, sub Submission) (*Confirmation, error) {
	return f(ctx, idempotencyKey, sub)
}
