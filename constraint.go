package extbuild

import (
	"fmt"
	"strings"
)

// Operator is a version comparison operator in a requirement constraint.
type Operator string

const (
	OpAny            Operator = ""
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// Constraint is a parsed requirement such as ">= 1.0.9" or "= d01a4ca".
type Constraint struct {
	Op      Operator
	Version string
}

// ParseConstraint parses the pkg-config constraint forms. An empty string
// yields a constraint satisfied by any installed version, and a bare version
// is treated as an exact match.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{Op: OpAny}, nil
	}

	// Longest operators first so ">=" is not read as ">".
	for _, op := range []string{"==", ">=", "<=", "!=", "=", ">", "<"} {
		if !strings.HasPrefix(s, op) {
			continue
		}
		version := strings.TrimSpace(s[len(op):])
		if version == "" {
			return Constraint{}, fmt.Errorf("constraint %q has no version", s)
		}
		if strings.ContainsAny(version, " \t") {
			return Constraint{}, fmt.Errorf("constraint %q has more than one version", s)
		}
		if op == "==" {
			op = "="
		}
		return Constraint{Op: Operator(op), Version: version}, nil
	}

	if strings.ContainsAny(s, " \t<>=!") {
		return Constraint{}, fmt.Errorf("unrecognized constraint %q", s)
	}
	return Constraint{Op: OpEqual, Version: s}, nil
}

// Satisfied reports whether installed meets the constraint. Exact matches
// accept identical text, which is how commit-hash pins are compared.
func (c Constraint) Satisfied(installed string) bool {
	switch c.Op {
	case OpAny:
		return true
	case OpEqual:
		return installed == c.Version || CompareVersions(installed, c.Version) == 0
	case OpNotEqual:
		return installed != c.Version && CompareVersions(installed, c.Version) != 0
	case OpLess:
		return CompareVersions(installed, c.Version) < 0
	case OpLessOrEqual:
		return CompareVersions(installed, c.Version) <= 0
	case OpGreater:
		return CompareVersions(installed, c.Version) > 0
	case OpGreaterOrEqual:
		return CompareVersions(installed, c.Version) >= 0
	}
	return false
}

func (c Constraint) String() string {
	if c.Op == OpAny {
		return ""
	}
	return string(c.Op) + " " + c.Version
}

// CompareVersions compares two version strings the way pkg-config does
// (the RPM segment algorithm) and returns -1, 0 or 1.
//
// Both strings are split into runs of digits and runs of letters; any other
// character only separates runs. Numeric runs compare numerically, alpha
// runs lexically, and a numeric run is newer than an alpha run. When one
// string runs out of segments first, the longer one is newer.
func CompareVersions(a, b string) int {
	if a == b {
		return 0
	}

	for {
		a = strings.TrimLeftFunc(a, isVersionSeparator)
		b = strings.TrimLeftFunc(b, isVersionSeparator)
		if a == "" || b == "" {
			break
		}

		numeric := isDigit(a[0])
		segA, restA := splitSegment(a, numeric)
		segB, restB := splitSegment(b, numeric)

		if segB == "" {
			// Segment kinds differ: numeric is newer than alpha.
			if numeric {
				return 1
			}
			return -1
		}

		var cmp int
		if numeric {
			cmp = compareNumeric(segA, segB)
		} else {
			cmp = strings.Compare(segA, segB)
		}
		if cmp != 0 {
			return cmp
		}

		a, b = restA, restB
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func splitSegment(s string, numeric bool) (segment, rest string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if numeric && !isDigit(c) || !numeric && !isAlpha(c) {
			break
		}
		i++
	}
	return s[:i], s[i:]
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isVersionSeparator(r rune) bool {
	return r > 0x7f || !isDigit(byte(r)) && !isAlpha(byte(r))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
