package records

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	dniPattern   = regexp.MustCompile(`^[0-9]{8,12}$`)
	emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)
	phonePattern = regexp.MustCompile(`^[0-9+\s()-]{7,15}$`)
)

// MinPasswordLength applies to password changes and resets.
const MinPasswordLength = 6

// ValidDNI reports whether value is a national identity number.
func ValidDNI(value string) bool {
	return dniPattern.MatchString(value)
}

// ValidEmail reports whether value looks like an email address.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidPhone reports whether value looks like a phone number.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func requireField(errs FieldErrors, field, value, message string) {
	if blank(value) {
		errs.Add(field, message)
	}
}

func indexed(group string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", group, i, field)
}
