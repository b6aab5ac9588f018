package models

import (
	"time"

	"rngenius/pkg/domain"
)

// Result is the persisted outcome of one draw, recording who drew and what
// came out.
type Result struct {
	ID          domain.ResultID
	GeneratorID domain.GeneratorID
	UserID      domain.UserID
	OptionID    domain.OptionID
	CreatedAt   time.Time
}
