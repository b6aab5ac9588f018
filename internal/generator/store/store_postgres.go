package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rngenius/internal/generator/models"
	"rngenius/internal/platform/database"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
)

// Postgres bundles the SQL-backed stores over one connection pool.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Generators() GeneratorStore     { return postgresGenerators{p.db} }
func (p *Postgres) Options() OptionStore           { return postgresOptions{p.db} }
func (p *Postgres) Participants() ParticipantStore { return postgresParticipants{p.db} }
func (p *Postgres) Selections() SelectionStore     { return postgresSelections{p.db} }
func (p *Postgres) Results() ResultStore           { return postgresResults{p.db} }

type postgresGenerators struct{ db *sql.DB }

func (s postgresGenerators) Add(ctx context.Context, g *models.Generator) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO generators (title, icon_number, owner_id)
		 VALUES ($1, $2, $3) RETURNING id`,
		g.Title, g.IconNumber, g.OwnerID.Int64(),
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("insert generator: %w", err)
	}
	return nil
}

func (s postgresGenerators) Update(ctx context.Context, g *models.Generator) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE generators SET title = $2, icon_number = $3 WHERE id = $1`,
		g.ID.Int64(), g.Title, g.IconNumber,
	)
	if err != nil {
		return fmt.Errorf("update generator: %w", err)
	}
	return checkAffected(res)
}

func (s postgresGenerators) FindByID(ctx context.Context, id domain.GeneratorID) (*models.Generator, error) {
	var g models.Generator
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, icon_number, owner_id FROM generators WHERE id = $1`,
		id.Int64(),
	).Scan(&g.ID, &g.Title, &g.IconNumber, &g.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find generator: %w", err)
	}
	return &g, nil
}

func (s postgresGenerators) Delete(ctx context.Context, id domain.GeneratorID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generators WHERE id = $1`, id.Int64())
	if err != nil {
		return fmt.Errorf("delete generator: %w", err)
	}
	return checkAffected(res)
}

type postgresOptions struct{ db *sql.DB }

func (s postgresOptions) Add(ctx context.Context, o *models.Option) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO options (generator_id, name, categories, description)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		o.GeneratorID.Int64(), o.Name, pq.Array(o.Categories), o.Description,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert option: %w", err)
	}
	return nil
}

func (s postgresOptions) Update(ctx context.Context, o *models.Option) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE options SET name = $2, categories = $3, description = $4 WHERE id = $1`,
		o.ID.Int64(), o.Name, pq.Array(o.Categories), o.Description,
	)
	if err != nil {
		return fmt.Errorf("update option: %w", err)
	}
	return checkAffected(res)
}

func (s postgresOptions) FindByID(ctx context.Context, id domain.OptionID) (*models.Option, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, generator_id, name, categories, description
		 FROM options WHERE id = $1`,
		id.Int64(),
	)
	return scanOption(row)
}

func (s postgresOptions) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Option, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generator_id, name, categories, description
		 FROM options WHERE generator_id = $1 ORDER BY id`,
		id.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var out []*models.Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s postgresOptions) FindByGeneratorIDAndName(ctx context.Context, id domain.GeneratorID, name string) (*models.Option, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, generator_id, name, categories, description
		 FROM options WHERE generator_id = $1 AND name = $2`,
		id.Int64(), name,
	)
	return scanOption(row)
}

func (s postgresOptions) Delete(ctx context.Context, id domain.OptionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM options WHERE id = $1`, id.Int64())
	if err != nil {
		return fmt.Errorf("delete option: %w", err)
	}
	return checkAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOption(row rowScanner) (*models.Option, error) {
	var o models.Option
	err := row.Scan(&o.ID, &o.GeneratorID, &o.Name, pq.Array(&o.Categories), &o.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan option: %w", err)
	}
	return &o, nil
}

type postgresParticipants struct{ db *sql.DB }

func (s postgresParticipants) Add(ctx context.Context, p *models.Participant) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO participants (generator_id, user_id, notifications)
		 VALUES ($1, $2, $3) RETURNING id`,
		p.GeneratorID.Int64(), p.UserID.Int64(), p.Notifications,
	).Scan(&p.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s postgresParticipants) Update(ctx context.Context, p *models.Participant) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET notifications = $2 WHERE id = $1`,
		p.ID.Int64(), p.Notifications,
	)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return checkAffected(res)
}

func (s postgresParticipants) FindByID(ctx context.Context, id domain.ParticipantID) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, generator_id, user_id, notifications
		 FROM participants WHERE id = $1`,
		id.Int64(),
	).Scan(&p.ID, &p.GeneratorID, &p.UserID, &p.Notifications)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return &p, nil
}

func (s postgresParticipants) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Participant, error) {
	return s.list(ctx, `generator_id = $1`, id.Int64())
}

func (s postgresParticipants) FindByUserID(ctx context.Context, id domain.UserID) ([]*models.Participant, error) {
	return s.list(ctx, `user_id = $1`, id.Int64())
}

func (s postgresParticipants) list(ctx context.Context, where string, arg any) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generator_id, user_id, notifications
		 FROM participants WHERE `+where+` ORDER BY id`, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.GeneratorID, &p.UserID, &p.Notifications); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s postgresParticipants) FindByUserAndGenerator(ctx context.Context, userID domain.UserID, generatorID domain.GeneratorID) (*models.Participant, error) {
	var p models.Participant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, generator_id, user_id, notifications
		 FROM participants WHERE user_id = $1 AND generator_id = $2`,
		userID.Int64(), generatorID.Int64(),
	).Scan(&p.ID, &p.GeneratorID, &p.UserID, &p.Notifications)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find participant: %w", err)
	}
	return &p, nil
}

func (s postgresParticipants) Delete(ctx context.Context, id domain.ParticipantID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id.Int64())
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return checkAffected(res)
}

type postgresSelections struct{ db *sql.DB }

func (s postgresSelections) Add(ctx context.Context, sel *models.Selection) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO selections (participant_id, option_id, favorised, excluded)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		sel.ParticipantID.Int64(), sel.OptionID.Int64(), sel.Favorised, sel.Excluded,
	).Scan(&sel.ID)
	if err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}
	return nil
}

func (s postgresSelections) Update(ctx context.Context, sel *models.Selection) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE selections SET favorised = $2, excluded = $3 WHERE id = $1`,
		sel.ID.Int64(), sel.Favorised, sel.Excluded,
	)
	if err != nil {
		return fmt.Errorf("update selection: %w", err)
	}
	return checkAffected(res)
}

func (s postgresSelections) FindByOptionID(ctx context.Context, id domain.OptionID) ([]*models.Selection, error) {
	return s.list(ctx, `option_id = $1`, id.Int64())
}

func (s postgresSelections) FindByParticipantID(ctx context.Context, id domain.ParticipantID) ([]*models.Selection, error) {
	return s.list(ctx, `participant_id = $1`, id.Int64())
}

func (s postgresSelections) list(ctx context.Context, where string, arg any) ([]*models.Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, participant_id, option_id, favorised, excluded
		 FROM selections WHERE `+where+` ORDER BY id`, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var out []*models.Selection
	for rows.Next() {
		var sel models.Selection
		if err := rows.Scan(&sel.ID, &sel.ParticipantID, &sel.OptionID, &sel.Favorised, &sel.Excluded); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		out = append(out, &sel)
	}
	return out, rows.Err()
}

func (s postgresSelections) FindByParticipantAndOption(ctx context.Context, participantID domain.ParticipantID, optionID domain.OptionID) (*models.Selection, error) {
	var sel models.Selection
	err := s.db.QueryRowContext(ctx,
		`SELECT id, participant_id, option_id, favorised, excluded
		 FROM selections WHERE participant_id = $1 AND option_id = $2`,
		participantID.Int64(), optionID.Int64(),
	).Scan(&sel.ID, &sel.ParticipantID, &sel.OptionID, &sel.Favorised, &sel.Excluded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find selection: %w", err)
	}
	return &sel, nil
}

func (s postgresSelections) Delete(ctx context.Context, id domain.SelectionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM selections WHERE id = $1`, id.Int64())
	if err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return checkAffected(res)
}

type postgresResults struct{ db *sql.DB }

func (s postgresResults) Add(ctx context.Context, r *models.Result) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO results (generator_id, user_id, option_id, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		r.GeneratorID.Int64(), r.UserID.Int64(), r.OptionID.Int64(), r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s postgresResults) FindByGeneratorID(ctx context.Context, id domain.GeneratorID) ([]*models.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generator_id, user_id, option_id, created_at
		 FROM results WHERE generator_id = $1 ORDER BY id`,
		id.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*models.Result
	for rows.Next() {
		var r models.Result
		if err := rows.Scan(&r.ID, &r.GeneratorID, &r.UserID, &r.OptionID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s postgresResults) DeleteByGeneratorID(ctx context.Context, id domain.GeneratorID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE generator_id = $1`, id.Int64()); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	return nil
}

func (s postgresResults) DeleteByOptionID(ctx context.Context, id domain.OptionID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE option_id = $1`, id.Int64()); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
