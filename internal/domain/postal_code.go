package domain

import "errors"

// ErrInvalidPostalCode is returned for anything that is not a Norwegian postal code
var ErrInvalidPostalCode = errors.New("invalid postal code format for Norway: postal code must be numeric and consist of 4 digits")

// PostalCode Norwegian delivery-area code, exactly 4 ASCII digits
type PostalCode string

// ParsePostalCode validates s and returns it as a PostalCode
func ParsePostalCode(s string) (PostalCode, error) {
	if len(s) != 4 {
		return "", ErrInvalidPostalCode
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", ErrInvalidPostalCode
		}
	}
	return PostalCode(s), nil
}

// String returns the code verbatim, leading zeros included
func (p PostalCode) String() string {
	return string(p)
}
