package models

import "rngenius/pkg/domain"

// Selection records one participant's stance on one option. Favorised and
// Excluded are mutually exclusive, an option is at most one of the two for
// a given participant.
type Selection struct {
	ID            domain.SelectionID
	ParticipantID domain.ParticipantID
	OptionID      domain.OptionID
	Favorised     bool
	Excluded      bool
}

// ToggleFavorised flips the favorite flag. Favorising an excluded option
// clears the exclusion.
func (s *Selection) ToggleFavorised() {
	if s.Favorised {
		s.Favorised = false
		return
	}
	s.Favorised = true
	s.Excluded = false
}

// ToggleExcluded flips the exclusion flag. Excluding a favorised option
// clears the favorite.
func (s *Selection) ToggleExcluded() {
	if s.Excluded {
		s.Excluded = false
		return
	}
	s.Excluded = true
	s.Favorised = false
}

// MarkFavorised sets the favorite flag without toggling. Category-wide
// operations use this so re-applying is idempotent.
func (s *Selection) MarkFavorised() {
	s.Favorised = true
	s.Excluded = false
}

// MarkExcluded sets the exclusion flag without toggling.
func (s *Selection) MarkExcluded() {
	s.Excluded = true
	s.Favorised = false
}
