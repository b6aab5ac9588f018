package models

import "rngenius/pkg/domain"

// Participant ties a user to a generator. Notifications control whether the
// user sees draw results for this generator in their feed.
type Participant struct {
	ID            domain.ParticipantID
	GeneratorID   domain.GeneratorID
	UserID        domain.UserID
	Notifications bool
}
