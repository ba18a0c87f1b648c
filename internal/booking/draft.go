package booking

// ServiceLocation is where the service is performed.
type ServiceLocation string

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	LocationHome  ServiceLocation = "home"
	LocationSalon ServiceLocation = "salon"

	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// Valid reports whether l is one of the known locations.
func (l ServiceLocation) Valid() bool {
	return l == LocationHome || l == LocationSalon
}

// Label is the display text used on the confirmation step.
func (l ServiceLocation) Label() string {
	switch l {
	case LocationHome:
		return "At Home"
	case LocationSalon:
		return "At Salon"
	}
	return ""
}

// Valid reports whether p is one of the known payment methods.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCOD || p == PaymentOnline
}

// Label is the display text used on the confirmation step.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCOD:
		return "Cash on Service"
	case PaymentOnline:
		return "Online Payment"
	}
	return ""
}

// Field names, as reported by MissingFields and used in patches.
const (
	FieldSelectedDate        = "selectedDate"
	FieldSelectedTime        = "selectedTime"
	FieldServiceLocation     = "serviceLocation"
	FieldAddress             = "address"
	FieldCity                = "city"
	FieldPincode             = "pincode"
	FieldFullName            = "fullName"
	FieldPhone               = "phone"
	FieldEmail               = "email"
	FieldSpecialInstructions = "specialInstructions"
	FieldPaymentMethod       = "paymentMethod"
)

// fieldStep maps every draft field to the step that collects it.
var fieldStep = map[string]Step{
	FieldSelectedDate:        StepDateTime,
	FieldSelectedTime:        StepDateTime,
	FieldServiceLocation:     StepLocation,
	FieldAddress:             StepLocation,
	FieldCity:                StepLocation,
	FieldPincode:             StepLocation,
	FieldFullName:            StepDetails,
	FieldPhone:               StepDetails,
	FieldEmail:               StepDetails,
	FieldSpecialInstructions: StepDetails,
	FieldPaymentMethod:       StepDetails,
}

// Draft is the per-attempt form state of the wizard. It is never persisted.
type Draft struct {
	SelectedDate        string          `json:"selectedDate"`
	SelectedTime        string          `json:"selectedTime"`
	ServiceLocation     ServiceLocation `json:"serviceLocation"`
	Address             string          `json:"address"`
	City                string          `json:"city"`
	Pincode             string          `json:"pincode"`
	FullName            string          `json:"fullName"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	SpecialInstructions string          `json:"specialInstructions"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
}

// newDraft returns the draft a freshly opened wizard starts from. Location
// and payment start preselected as home and cod; every other field is empty.
func newDraft() Draft {
	return Draft{
		ServiceLocation: LocationHome,
		PaymentMethod:   PaymentCOD,
	}
}

// DraftPatch carries the fields a client wants to change; nil means untouched.
type DraftPatch struct {
	SelectedDate        *string          `json:"selectedDate,omitempty"`
	SelectedTime        *string          `json:"selectedTime,omitempty"`
	ServiceLocation     *ServiceLocation `json:"serviceLocation,omitempty"`
	Address             *string          `json:"address,omitempty"`
	City                *string          `json:"city,omitempty"`
	Pincode             *string          `json:"pincode,omitempty"`
	FullName            *string          `json:"fullName,omitempty"`
	Phone               *string          `json:"phone,omitempty"`
	Email               *string          `json:"email,omitempty"`
	SpecialInstructions *string          `json:"specialInstructions,omitempty"`
	PaymentMethod       *PaymentMethod   `json:"paymentMethod,omitempty"`
}

// fields lists the names of the fields set in p.
func (p DraftPatch) fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(p.SelectedDate != nil, FieldSelectedDate)
	add(p.SelectedTime != nil, FieldSelectedTime)
	add(p.ServiceLocation != nil, FieldServiceLocation)
	add(p.Address != nil, FieldAddress)
	add(p.City != nil, FieldCity)
	add(p.Pincode != nil, FieldPincode)
	add(p.FullName != nil, FieldFullName)
	add(p.Phone != nil, FieldPhone)
	add(p.Email != nil, FieldEmail)
	add(p.SpecialInstructions != nil, FieldSpecialInstructions)
	add(p.PaymentMethod != nil, FieldPaymentMethod)
	return out
}

func (p DraftPatch) applyTo(d *Draft) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&d.SelectedDate, p.SelectedDate)
	setString(&d.SelectedTime, p.SelectedTime)
	if p.ServiceLocation != nil {
		d.ServiceLocation = *p.ServiceLocation
	}
	setString(&d.Address, p.Address)
	setString(&d.City, p.City)
	setString(&d.Pincode, p.Pincode)
	setString(&d.FullName, p.FullName)
	setString(&d.Phone, p.Phone)
	setString(&d.Email, p.Email)
	setString(&d.SpecialInstructions, p.SpecialInstructions)
	if p.PaymentMethod != nil {
		d.PaymentMethod = *p.PaymentMethod
	}
}
