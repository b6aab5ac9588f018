package models

import (
	"slices"

	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

// Option is a drawable entry in a generator. Categories group options so
// participants can mark whole slices of the pool at once.
type Option struct {
	ID          domain.OptionID
	GeneratorID domain.GeneratorID
	Name        string
	Categories  []string
	Description string
}

func (o *Option) Validate() error {
	if o.Name == "" || len(o.Categories) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "option", "Option data is required")
	}
	return nil
}

func (o *Option) HasCategory(category string) bool {
	return slices.Contains(o.Categories, category)
}

// MergeFrom folds another submission of the same option name into this one.
// Categories are unioned keeping this option's order first, the incoming
// description replaces the existing one when set.
func (o *Option) MergeFrom(other *Option) {
	for _, c := range other.Categories {
		if !o.HasCategory(c) {
			o.Categories = append(o.Categories, c)
		}
	}
	if other.Description != "" {
		o.Description = other.Description
	}
}

// RemoveCategory drops one category tag. It reports whether the option is
// left with no categories at all, in which case the caller is expected to
// purge it entirely.
func (o *Option) RemoveCategory(category string) (empty bool) {
	o.Categories = slices.DeleteFunc(o.Categories, func(c string) bool {
		return c == category
	})
	return len(o.Categories) == 0
}
