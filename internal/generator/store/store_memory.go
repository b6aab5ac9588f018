package store

import (
	"context"
	"slices"
	"sync"

	"rngenius/internal/generator/models"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
)

// Memory keeps the full generator graph in process memory. The per-entity
// accessors share one lock so cross-entity reads stay consistent the way
// the SQL implementation is.
type Memory struct {
	mu sync.RWMutex

	generators   map[domain.GeneratorID]*models.Generator
	options      map[domain.OptionID]*models.Option
	participants map[domain.ParticipantID]*models.Participant
	selections   map[domain.SelectionID]*models.Selection
	results      map[domain.ResultID]*models.Result

	nextID int64
}

func NewMemory() *Memory {
	return &Memory{
		generators:   make(map[domain.GeneratorID]*models.Generator),
		options:      make(map[domain.OptionID]*models.Option),
		participants: make(map[domain.ParticipantID]*models.Participant),
		selections:   make(map[domain.SelectionID]*models.Selection),
		results:      make(map[domain.ResultID]*models.Result),
	}
}

func (m *Memory) Generators() GeneratorStore     { return memoryGenerators{m} }
func (m *Memory) Options() OptionStore           { return memoryOptions{m} }
func (m *Memory) Participants() ParticipantStore { return memoryParticipants{m} }
func (m *Memory) Selections() SelectionStore     { return memorySelections{m} }
func (m *Memory) Results() ResultStore           { return memoryResults{m} }

// next must be called with the write lock held.
func (m *Memory) next() int64 {
	m.nextID++
	return m.nextID
}

type memoryGenerators struct{ *Memory }

func (s memoryGenerators) Add(ctx context.Context, g *models.Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = domain.GeneratorID(s.next())
	copied := *g
	s.generators[g.ID] = &copied
	return nil
}

func (s memoryGenerators) Update(ctx context.Context, g *models.Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.generators[g.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *g
	s.generators[g.ID] = &copied
	return nil
}

func (s memoryGenerators) FindByID(ctx context.Context, id domain.GeneratorID) (*models.Generator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.generators[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

func (s memoryGenerators) Delete(ctx context.Context, id domain.GeneratorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.generators[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.generators, id)
	return nil
}

type memoryOptions struct{ *Memory }

func cloneOption(o *models.Option) *models.Option {
	copied := *o
	copied.Categories = slices.Clone(o.Categories)
	return &copied
}

func (s memoryOptions) Add(ctx context.Context, o *models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = domain.OptionID(s.next())
	s.options[o.ID] = cloneOption(o)
	return nil
}

func (s memoryOptions) Update(ctx context.Context, o *models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[o.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.options[o.ID] = cloneOption(o)
	return nil
}

func (s memoryOptions) FindByID(ctx context.Context, id domain.OptionID) (*models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.options[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneOption(o), nil
}

func (s memoryOptions) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Option
	for _, o := range s.options {
		if o.GeneratorID == id {
			out = append(out, cloneOption(o))
		}
	}
	slices.SortFunc(out, func(a, b *models.Option) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memoryOptions) FindByGeneratorIDAndName(ctx context.Context, id domain.GeneratorID, name string) (*models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.options {
		if o.GeneratorID == id && o.Name == name {
			return cloneOption(o), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s memoryOptions) Delete(ctx context.Context, id domain.OptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.options[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.options, id)
	return nil
}

type memoryParticipants struct{ *Memory }

func (s memoryParticipants) Add(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participants {
		if existing.GeneratorID == p.GeneratorID && existing.UserID == p.UserID {
			return sentinel.ErrConflict
		}
	}
	p.ID = domain.ParticipantID(s.next())
	copied := *p
	s.participants[p.ID] = &copied
	return nil
}

func (s memoryParticipants) Update(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *p
	s.participants[p.ID] = &copied
	return nil
}

func (s memoryParticipants) FindByID(ctx context.Context, id domain.ParticipantID) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s memoryParticipants) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Participant
	for _, p := range s.participants {
		if p.GeneratorID == id {
			copied := *p
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Participant) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memoryParticipants) FindByUserID(ctx context.Context, id domain.UserID) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Participant
	for _, p := range s.participants {
		if p.UserID == id {
			copied := *p
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Participant) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memoryParticipants) FindByUserAndGenerator(ctx context.Context, userID domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.participants {
		if p.UserID == userID && p.GeneratorID == generatorID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s memoryParticipants) Delete(ctx context.Context, id domain.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.participants, id)
	return nil
}

type memorySelections struct{ *Memory }

func (s memorySelections) Add(ctx context.Context, sel *models.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel.ID = domain.SelectionID(s.next())
	copied := *sel
	s.selections[sel.ID] = &copied
	return nil
}

func (s memorySelections) Update(ctx context.Context, sel *models.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selections[sel.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *sel
	s.selections[sel.ID] = &copied
	return nil
}

func (s memorySelections) FindByOptionID(ctx context.Context, id domain.OptionID) ([]*models.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Selection
	for _, sel := range s.selections {
		if sel.OptionID == id {
			copied := *sel
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Selection) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memorySelections) FindByParticipantID(ctx context.Context, id domain.ParticipantID) ([]*models.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Selection
	for _, sel := range s.selections {
		if sel.ParticipantID == id {
			copied := *sel
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Selection) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memorySelections) FindByParticipantAndOption(ctx context.Context, participantID domain.ParticipantID, optionID domain.OptionID) (*models.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.selections {
		if sel.ParticipantID == participantID && sel.OptionID == optionID {
			copied := *sel
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s memorySelections) Delete(ctx context.Context, id domain.SelectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selections[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.selections, id)
	return nil
}

type memoryResults struct{ *Memory }

func (s memoryResults) Add(ctx context.Context, r *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = domain.ResultID(s.next())
	copied := *r
	s.results[r.ID] = &copied
	return nil
}

func (s memoryResults) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Result
	for _, r := range s.results {
		if r.GeneratorID == id {
			copied := *r
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.Result) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s memoryResults) DeleteByGeneratorID(ctx context.Context, id domain.GeneratorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for rid, r := range s.results {
		if r.GeneratorID == id {
			delete(s.results, rid)
		}
	}
	return nil
}

func (s memoryResults) DeleteByOptionID(ctx context.Context, id domain.OptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for rid, r := range s.results {
		if r.OptionID == id {
			delete(s.results, rid)
		}
	}
	return nil
}
