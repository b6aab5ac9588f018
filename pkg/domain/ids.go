// Package domain holds the typed identifiers shared across services.
//
// Identifiers are int64-backed because the storage layer assigns them from
// monotonic sequences; result ids double as a recency proxy when sorting.
// Construct them via the Parse helpers at trust boundaries so handlers never
// pass raw strings into services.
package domain

import (
	"fmt"
	"strconv"
)

type (
	// UserID identifies a registered user.
	UserID int64
	// GeneratorID identifies a generator (a named pool of options).
	GeneratorID int64
	// OptionID identifies one candidate option inside a generator.
	OptionID int64
	// ParticipantID identifies a user's membership in a generator.
	ParticipantID int64
	// SelectionID identifies one participant's preference state for one option.
	SelectionID int64
	// ResultID identifies an immutable draw record.
	ResultID int64
)

func (id UserID) Int64() int64        { return int64(id) }
func (id GeneratorID) Int64() int64   { return int64(id) }
func (id OptionID) Int64() int64      { return int64(id) }
func (id ParticipantID) Int64() int64 { return int64(id) }
func (id SelectionID) Int64() int64   { return int64(id) }
func (id ResultID) Int64() int64      { return int64(id) }

// IsZero reports whether the id has not been assigned yet.
func (id UserID) IsZero() bool        { return id == 0 }
func (id GeneratorID) IsZero() bool   { return id == 0 }
func (id OptionID) IsZero() bool      { return id == 0 }
func (id ParticipantID) IsZero() bool { return id == 0 }
func (id SelectionID) IsZero() bool   { return id == 0 }
func (id ResultID) IsZero() bool      { return id == 0 }

func parseID(s, kind string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, s)
	}
	return n, nil
}

// ParseUserID parses a decimal user id from external input.
func ParseUserID(s string) (UserID, error) {
	n, err := parseID(s, "user")
	return UserID(n), err
}

// ParseGeneratorID parses a decimal generator id from external input.
func ParseGeneratorID(s string) (GeneratorID, error) {
	n, err := parseID(s, "generator")
	return GeneratorID(n), err
}

// ParseOptionID parses a decimal option id from external input.
func ParseOptionID(s string) (OptionID, error) {
	n, err := parseID(s, "option")
	return OptionID(n), err
}
