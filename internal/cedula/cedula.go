// Package cedula parses and validates Dominican cédula numbers.
//
// A cédula is an 11 digit national identifier structured as
// MMM-SSSSSSS-C: a 3 digit municipality code, a 7 digit sequence and a
// single check digit. Input may arrive with or without hyphens.
package cedula

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid reports input that does not reduce to exactly 11 digits.
var ErrInvalid = errors.New("cedula: must contain exactly 11 digits")

// Cedula is an immutable, validated cédula number.
type Cedula struct {
	clean string
}

// Parse strips every non-digit character from raw and validates the result.
// It never performs I/O and is safe for concurrent use.
func Parse(raw string) (Cedula, error) {
	clean := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(clean) != 11 {
		return Cedula{}, fmt.Errorf("%w: got %d digits", ErrInvalid, len(clean))
	}
	return Cedula{clean: clean}, nil
}

// String returns the canonical 11 digit form without separators.
func (c Cedula) String() string { return c.clean }

// Formatted returns the display form MMM-SSSSSSS-C.
func (c Cedula) Formatted() string {
	return c.clean[0:3] + "-" + c.clean[3:10] + "-" + c.clean[10:11]
}

// Municipality returns the 3 digit municipality code.
func (c Cedula) Municipality() string { return c.clean[0:3] }

// Sequence returns the 7 digit sequence number.
func (c Cedula) Sequence() string { return c.clean[3:10] }

// CheckDigit returns the final verification digit.
func (c Cedula) CheckDigit() string { return c.clean[10:11] }
