package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// NoDateSelected is shown when the visitor reaches confirmation without
	// picking a slot.
	NoDateSelected = "No date selected"
	// NoTimeSelected accompanies NoDateSelected.
	NoTimeSelected = "No time selected"

	dateLayout = "2006-01-02"
)

var (
	// ErrMalformedSlot indicates a slot identifier that does not parse as
	// "YYYY-MM-DDTh" with an hour between 0 and 23.
	ErrMalformedSlot = errors.New("malformed slot identifier")
	// ErrCrossDate indicates a selection whose slots span more than one date.
	ErrCrossDate = errors.New("selection spans multiple dates")
	// ErrOutsideOpeningHours indicates a slot outside cafe opening hours.
	ErrOutsideOpeningHours = errors.New("slot is outside opening hours")
)

// Slot is one bookable hour of a calendar day.
type Slot struct {
	Date time.Time
	Hour int
}

// ID renders the slot back into its identifier form.
func (s Slot) ID() string {
	return fmt.Sprintf("%sT%d", s.Date.Format(dateLayout), s.Hour)
}

// ParseSlot decodes a slot identifier of the form "YYYY-MM-DDTh".
func ParseSlot(id string) (Slot, error) {
	datePart, hourPart, ok := strings.Cut(id, "T")
	if !ok {
		return Slot{}, fmt.Errorf("%w: %q", ErrMalformedSlot, id)
	}
	date, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q: %v", ErrMalformedSlot, id, err)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return Slot{}, fmt.Errorf("%w: %q: hour out of range", ErrMalformedSlot, id)
	}
	return Slot{Date: date, Hour: hour}, nil
}

// ParseSelection decodes every identifier in a selection and rejects
// selections that span more than one date.
func ParseSelection(ids []string) ([]Slot, error) {
	slots := make([]Slot, 0, len(ids))
	for _, id := range ids {
		slot, err := ParseSlot(id)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 && !slot.Date.Equal(slots[0].Date) {
			return nil, ErrCrossDate
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// Details is the human-readable rendering of a slot selection shown on the
// confirmation page.
type Details struct {
	Date      string `json:"date"`
	TimeRange string `json:"timeRange"`
}

// FormatSelection turns a slot selection into display strings. An empty
// selection yields the "No date selected" placeholders. The time range is
// end-exclusive: a single hour-14 slot reads "14:00 - 15:00".
func FormatSelection(ids []string) (Details, error) {
	if len(ids) == 0 {
		return Details{Date: NoDateSelected, TimeRange: NoTimeSelected}, nil
	}

	slots, err := ParseSelection(ids)
	if err != nil {
		return Details{}, err
	}

	hours := make([]int, len(slots))
	for i, s := range slots {
		hours[i] = s.Hour
	}
	sort.Ints(hours)

	return Details{
		Date:      slots[0].Date.Format("Monday, 02 Jan 2006"),
		TimeRange: fmt.Sprintf("%d:00 - %d:00", hours[0], hours[len(hours)-1]+1),
	}, nil
}

// OpeningHours returns the cafe's open and close hour for a weekday, or
// ok=false when closed. The close hour is exclusive.
func OpeningHours(day time.Weekday) (open, close int, ok bool) {
	switch day {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return 8, 17, true
	case time.Friday:
		return 8, 13, true
	default:
		return 0, 0, false
	}
}

// ValidateSelection parses a selection and checks every slot against opening
// hours: Monday to Thursday 08:00-17:00, Friday 08:00-13:00, closed weekends.
func ValidateSelection(ids []string) ([]Slot, error) {
	slots, err := ParseSelection(ids)
	if err != nil {
		return nil, err
	}
	for _, s := range slots {
		open, close, ok := OpeningHours(s.Date.Weekday())
		if !ok || s.Hour < open || s.Hour+1 > close {
			return nil, fmt.Errorf("%w: %s", ErrOutsideOpeningHours, s.ID())
		}
	}
	return slots, nil
}
