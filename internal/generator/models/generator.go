package models

import (
	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

// Generator is a shared pool of options that a group of participants draws
// from. The owner is the user that created it and holds administrative
// rights over it.
type Generator struct {
	ID         domain.GeneratorID
	Title      string
	IconNumber int
	OwnerID    domain.UserID
}

func (g *Generator) Validate() error {
	if g.Title == "" || g.IconNumber <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "generator", "Generator data is required")
	}
	return nil
}
