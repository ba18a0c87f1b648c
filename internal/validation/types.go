package validation

// BookingDataRequest is the customer part of a booking.
// Address fields are checked by bookingDataStructValidation because they are
// only required for home visits.
type BookingDataRequest struct {
	SelectedDate        string `json:"selectedDate" validate:"required,bookable_date"`
	SelectedTime        string `json:"selectedTime" validate:"required,timeslot"`
	ServiceLocation     string `json:"serviceLocation" validate:"required,oneof=home salon"`
	Address             string `json:"address,omitempty" validate:"omitempty,max=200"`
	City                string `json:"city,omitempty" validate:"omitempty,max=100"`
	Pincode             string `json:"pincode,omitempty" validate:"omitempty,numeric,len=6"`
	FullName            string `json:"fullName" validate:"required,max=100"`
	Phone               string `json:"phone" validate:"required,min=7,max=20"`
	Email               string `json:"email" validate:"required,email"`
	SpecialInstructions string `json:"specialInstructions,omitempty" validate:"omitempty,max=500"`
	PaymentMethod       string `json:"paymentMethod" validate:"required,oneof=cod online"`
}

// CreateBookingRequest is the payload for POST /bookings
type CreateBookingRequest struct {
	ServiceID   string             `json:"serviceId" validate:"required"`
	Quantity    int                `json:"quantity" validate:"required,min=1"`
	TotalPrice  float64            `json:"totalPrice" validate:"gte=0"`
	BookingData BookingDataRequest `json:"bookingData"`
}
