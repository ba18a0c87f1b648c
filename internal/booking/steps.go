package booking

import "strings"

// Step is the wizard's only state variable.
type Step int

const (
	StepDateTime Step = iota + 1
	StepLocation
	StepDetails
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepDateTime:
		return "datetime"
	case StepLocation:
		return "location"
	case StepDetails:
		return "details"
	case StepConfirm:
		return "confirm"
	}
	return "unknown"
}

// CanAdvance reports whether the gate guarding the step after step passes.
// The confirm step has no successor, so it never advances.
func CanAdvance(step Step, d Draft) bool {
	if step < StepDateTime || step >= StepConfirm {
		return false
	}
	return len(MissingFields(step, d)) == 0
}

// MissingFields lists the required fields of step that are still blank, in
// form order.
func MissingFields(step Step, d Draft) []string {
	var missing []string
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch step {
	case StepDateTime:
		require(d.SelectedDate, FieldSelectedDate)
		require(d.SelectedTime, FieldSelectedTime)
	case StepLocation:
		switch d.ServiceLocation {
		case LocationHome:
			require(d.Address, FieldAddress)
			require(d.City, FieldCity)
			require(d.Pincode, FieldPincode)
		case LocationSalon:
		default:
			missing = append(missing, FieldServiceLocation)
		}
	case StepDetails:
		require(d.FullName, FieldFullName)
		require(d.Phone, FieldPhone)
		require(d.Email, FieldEmail)
	}
	return missing
}
