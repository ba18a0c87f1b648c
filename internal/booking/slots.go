package booking

import "time"

const (
	// DateLayout is the wire format of SelectedDate.
	DateLayout = "2006-01-02"
	// DateLabelLayout is how a selected date is shown on the summary.
	DateLabelLayout = "Mon, 02 Jan 2006"

	// BookingWindowDays is how far ahead, counted from tomorrow, dates are offered.
	BookingWindowDays = 30
)

// TimeSlot is one bookable start time.
type TimeSlot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TimeSlots is the bookable day. There is no slot between 12:00 and 14:00.
var TimeSlots = []TimeSlot{
	{Value: "09:00", Label: "9:00 AM"},
	{Value: "10:00", Label: "10:00 AM"},
	{Value: "11:00", Label: "11:00 AM"},
	{Value: "12:00", Label: "12:00 PM"},
	{Value: "14:00", Label: "2:00 PM"},
	{Value: "15:00", Label: "3:00 PM"},
	{Value: "16:00", Label: "4:00 PM"},
	{Value: "17:00", Label: "5:00 PM"},
	{Value: "18:00", Label: "6:00 PM"},
}

// TimeSlotLabel returns the display label of value, if it is a known slot.
func TimeSlotLabel(value string) (string, bool) {
	for _, ts := range TimeSlots {
		if ts.Value == value {
			return ts.Label, true
		}
	}
	return "", false
}

// IsTimeSlot reports whether value is in the slot table.
func IsTimeSlot(value string) bool {
	_, ok := TimeSlotLabel(value)
	return ok
}

// EligibleDates returns the BookingWindowDays calendar days after now's date,
// skipping Sundays, at midnight in now's location.
func EligibleDates(now time.Time) []time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dates := make([]time.Time, 0, BookingWindowDays)
	for i := 1; i <= BookingWindowDays; i++ {
		d := today.AddDate(0, 0, i)
		if d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// FormatDates renders dates with DateLayout.
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return out
}
