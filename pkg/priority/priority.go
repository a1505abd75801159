// Package priority defines the scheduling hint attached to every afile
// operation.
//
// A Priority is an opaque urgency token. The afile core never interprets it
// beyond passing it to the executor that runs the operation:
//   - The pool backend uses it to order queued jobs on its worker pool
//   - The remote backend forwards it as an HTTP Priority header
//
// Correctness never depends on the value; it only affects the order in
// which independent operations are started.
package priority

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is an urgency hint. Higher values are more urgent.
type Priority uint8

const (
	// Background is for prefetch and other work nobody is waiting on.
	Background Priority = 0x20

	// UnitTest is the level used by tests. It is also the default level.
	UnitTest Priority = 0x80

	// UserInitiated is for work a user is actively waiting on.
	UserInitiated Priority = 0xC0

	// Highest is the most urgent level.
	Highest Priority = 0xFF

	// Default is the level used when nothing else is configured.
	Default = UnitTest
)

// Less reports whether p is less urgent than q.
func (p Priority) Less(q Priority) bool {
	return p < q
}

// Urgency maps the priority onto the RFC 9218 urgency scale, where 0 is the
// most urgent and 7 the least. Default maps to 3, which is also the
// RFC 9218 default.
func (p Priority) Urgency() int {
	return 7 - int(p)/32
}

// String returns the name of a named level, or the numeric value otherwise.
func (p Priority) String() string {
	switch p {
	case Background:
		return "background"
	case UnitTest:
		return "unit_test"
	case UserInitiated:
		return "user_initiated"
	case Highest:
		return "highest"
	default:
		return strconv.Itoa(int(p))
	}
}

// Parse converts a level name or a number in [0, 255] into a Priority.
// Names are case-insensitive; "default" is accepted as an alias for
// UnitTest.
func Parse(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "background":
		return Background, nil
	case "unit_test", "unittest", "default", "":
		return UnitTest, nil
	case "user_initiated", "userinitiated":
		return UserInitiated, nil
	case "highest":
		return Highest, nil
	}

	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid priority %q", s)
	}
	return Priority(n), nil
}
