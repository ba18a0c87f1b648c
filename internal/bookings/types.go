package bookings

import "time"

// Booking statuses
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusConfirmed  = "CONFIRMED"
	StatusFailed     = "FAILED"
)

// Details is the customer-facing part of a booking collected by the wizard.
type Details struct {
	SelectedDate        string `dynamodbav:"selected_date" json:"selectedDate"`
	SelectedTime        string `dynamodbav:"selected_time" json:"selectedTime"`
	ServiceLocation     string `dynamodbav:"service_location" json:"serviceLocation"`
	Address             string `dynamodbav:"address,omitempty" json:"address,omitempty"`
	City                string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	Pincode             string `dynamodbav:"pincode,omitempty" json:"pincode,omitempty"`
	FullName            string `dynamodbav:"full_name" json:"fullName"`
	Phone               string `dynamodbav:"phone" json:"phone"`
	Email               string `dynamodbav:"email" json:"email"`
	SpecialInstructions string `dynamodbav:"special_instructions,omitempty" json:"specialInstructions,omitempty"`
	PaymentMethod       string `dynamodbav:"payment_method" json:"paymentMethod"`
}

// Booking represents the item stored in the Bookings DynamoDB table.
type Booking struct {
	BookingID      string    `dynamodbav:"booking_id" json:"bookingId"` // PK
	ServiceID      string    `dynamodbav:"service_id" json:"serviceId"`
	Status         string    `dynamodbav:"status" json:"status"` // PENDING | PROCESSING | CONFIRMED | FAILED
	Quantity       int       `dynamodbav:"quantity" json:"quantity"`
	TotalPrice     float64   `dynamodbav:"total_price" json:"totalPrice"`
	Details        Details   `dynamodbav:"booking_data" json:"bookingData"`
	IdempotencyKey string    `dynamodbav:"idempotency_key,omitempty" json:"-"`
	CreatedAt      time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `dynamodbav:"updated_at" json:"updatedAt"`
	Attempts       int       `dynamodbav:"attempts,omitempty" json:"-"`
}
