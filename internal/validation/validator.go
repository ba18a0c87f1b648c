package validation

import (
	"reflect"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-salon-bookings/internal/booking"
)

// New returns a validator whose bookable_date window is measured from time.Now.
func New() *validatorv10.Validate {
	return NewWithClock(time.Now)
}

// NewWithClock returns a configured validator with the booking tags and
// struct-level rules registered. now anchors the bookable date window.
func NewWithClock(now func() time.Time) *validatorv10.Validate {
	v := validatorv10.New()

	// report json names so clients can map errors back to form fields
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("timeslot", func(fl validatorv10.FieldLevel) bool {
		return booking.IsTimeSlot(fl.Field().String())
	})
	_ = v.RegisterValidation("bookable_date", func(fl validatorv10.FieldLevel) bool {
		return isBookableDate(fl.Field().String(), now())
	})

	v.RegisterStructValidation(bookingDataStructValidation, BookingDataRequest{})

	return v
}

// isBookableDate reports whether value is one of the dates offered from now.
func isBookableDate(value string, now time.Time) bool {
	d, err := time.ParseInLocation(booking.DateLayout, value, now.Location())
	if err != nil {
		return false
	}
	for _, eligible := range booking.EligibleDates(now) {
		if eligible.Equal(d) {
			return true
		}
	}
	return false
}

// bookingDataStructValidation requires a non-blank address, city and pincode
// for home visits, and rejects whitespace-only contact fields.
func bookingDataStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(BookingDataRequest)

	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	if req.ServiceLocation == string(booking.LocationHome) {
		if blank(req.Address) {
			sl.ReportError(req.Address, "address", "Address", "required_if", "serviceLocation home")
		}
		if blank(req.City) {
			sl.ReportError(req.City, "city", "City", "required_if", "serviceLocation home")
		}
		if blank(req.Pincode) {
			sl.ReportError(req.Pincode, "pincode", "Pincode", "required_if", "serviceLocation home")
		}
	}
	if req.FullName != "" && blank(req.FullName) {
		sl.ReportError(req.FullName, "fullName", "FullName", "required", "")
	}
	if req.Phone != "" && blank(req.Phone) {
		sl.ReportError(req.Phone, "phone", "Phone", "required", "")
	}
}
