// Package taxonomy defines the closed enumerations shared with the system of
// record. String values are the upstream wire codes.
package taxonomy

import "fmt"

// Style is a presentation hint the console maps to its palette.
type Style string

const (
	StylePrimary     Style = "primary"
	StyleAccent      Style = "accent"
	StyleDestructive Style = "destructive"
	StyleBlue        Style = "blue"
	StyleGreen       Style = "green"
	StyleOrange      Style = "orange"
	StyleRed         Style = "red"
	StylePurple      Style = "purple"
	StyleYellow      Style = "yellow"
	StyleCyan        Style = "cyan"
	StylePink        Style = "pink"
	StyleEmerald     Style = "emerald"
	StyleGray        Style = "gray"
)

// Entry is one code of an enumeration with its display metadata.
type Entry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Style Style  `json:"style"`
}

// Catalog lists every enumeration for clients that render selects and badges.
type Catalog struct {
	AppointmentStatuses []Entry `json:"appointmentStatuses"`
	AppointmentTypes    []Entry `json:"appointmentTypes"`
	AppliedStatuses     []Entry `json:"appliedStatuses"`
	Categories          []Entry `json:"categories"`
	PaymentMethods      []Entry `json:"paymentMethods"`
	Genders             []Entry `json:"genders"`
}

type labeled interface {
	~string
	Label() string
	Style() Style
}

func entries[T labeled](values []T) []Entry {
	out := make([]Entry, 0, len(values))
	for _, v := range values {
		out = append(out, Entry{Code: string(v), Label: v.Label(), Style: v.Style()})
	}
	return out
}

// All returns the full catalog.
func All() Catalog {
	return Catalog{
		AppointmentStatuses: entries(AppointmentStatuses()),
		AppointmentTypes:    entries(AppointmentTypes()),
		AppliedStatuses:     entries(AppliedStatuses()),
		Categories:          entries(Categories()),
		PaymentMethods:      entries(PaymentMethods()),
		Genders:             entries(Genders()),
	}
}

func parse[T labeled](kind, value string, valid func(T) bool) (T, error) {
	v := T(value)
	if !valid(v) {
		var zero T
		return zero, fmt.Errorf("taxonomy: unknown %s %q", kind, value)
	}
	return v, nil
}
