package sample

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimal rejects the number syntax ParseFloat accepts beyond plain decimals:
// hex floats, digit underscores, inf and nan spellings.
var decimal = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// ParseError is returned for lines that do not carry a single number.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed sample: %q", e.Line)
}

// Parse converts a raw device line into a sample value.
// The device protocol is a bare decimal number per line, no framing.
func Parse(line string) (float64, error) {
	s := strings.Trim(line, " \t\r\n")
	if !decimal.MatchString(s) {
		return 0, &ParseError{Line: line}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Line: line}
	}

	return v, nil
}
