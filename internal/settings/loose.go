package settings

import (
	"regexp"
	"strconv"
)

// numericString matches what the original host runtime treats as a numeric
// string: optional surrounding whitespace, sign, decimal digits, exponent.
var numericString = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?[ \t\n\r\v\f]*$`)

// Filled reports whether a submitted value counts as present. The empty
// string and "0" are both treated as empty.
func Filled(value string) bool {
	return value != "" && value != "0"
}

// LooseEqual compares two strings the way the original host runtime does
// with its loose equality operator: numerically when both sides are numeric
// strings, byte-wise otherwise. "1", "01", "1.0" and " 1" all equal "1".
func LooseEqual(a, b string) bool {
	if numericString.MatchString(a) && numericString.MatchString(b) {
		fa, errA := strconv.ParseFloat(trimNumeric(a), 64)
		fb, errB := strconv.ParseFloat(trimNumeric(b), 64)
		if errA == nil && errB == nil {
			return fa == fb
		}
	}
	return a == b
}

func trimNumeric(value string) string {
	start, end := 0, len(value)
	for start < end && isSpace(value[start]) {
		start++
	}
	for end > start && isSpace(value[end-1]) {
		end--
	}
	return value[start:end]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
