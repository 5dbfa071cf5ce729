package records

import "strings"

// Credentials authorize calls to the system of record. They are passed
// explicitly to every request-issuing operation.
type Credentials struct {
	Token string
}

// Valid reports whether a token is present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.Token) != ""
}

// BearerHeader renders the Authorization header value.
func (c Credentials) BearerHeader() string {
	return "Bearer " + c.Token
}
