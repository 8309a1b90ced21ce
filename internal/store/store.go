package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/catalog"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is how timestamps are stored. UTC text sorts chronologically on
// every supported database.
const timeLayout = "2006-01-02 15:04:05"

// Store is the relational persistence of catalogs, quotes and admin users.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func New(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the handle for transactions spanning several writes.
func (s *Store) DB() *sqlx.DB { return s.db }

// LoadRaw reads every catalog table as loosely typed records, in sort order.
func (s *Store) LoadRaw(ctx context.Context) (catalog.Raw, error) {
	var raw catalog.Raw
	for _, kind := range catalog.Kinds {
		records, err := s.loadKind(ctx, kind)
		if err != nil {
			return catalog.Raw{}, err
		}
		raw.SetRecords(kind, records)
	}
	return raw, nil
}

func (s *Store) loadKind(ctx context.Context, kind catalog.Kind) ([]catalog.Record, error) {
	key := kind.Columns()[0].Name
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY sort_order, %s`, kind, key))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	records := make([]catalog.Record, 0)
	for rows.Next() {
		rec := make(map[string]any)
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		for k, v := range rec {
			if b, ok := v.([]byte); ok {
				rec[k] = string(b)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return records, nil
}

// WriteStats counts rows touched by InsertRecords.
type WriteStats struct {
	Inserts int
	Updates int
	Skipped int
}

// InsertRecords writes raw records through ext, usually a transaction. Existing
// rows are updated when overwrite is set and left alone otherwise. Records
// without a key are skipped.
func InsertRecords(ctx context.Context, ext sqlx.ExtContext, raw catalog.Raw, overwrite bool) (WriteStats, error) {
	var stats WriteStats
	for _, kind := range catalog.Kinds {
		cols := kind.Columns()
		statement := ext.Rebind(upsertStatement(kind, cols, overwrite))
		existsQuery := ext.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, kind, cols[0].Name))

		for i, rec := range raw.Records(kind) {
			if rec == nil {
				stats.Skipped++
				continue
			}
			args := make([]any, 0, len(cols)+1)
			for _, c := range cols {
				args = append(args, c.Value(rec))
			}
			id, _ := args[0].(string)
			if id == "" {
				stats.Skipped++
				continue
			}
			args = append(args, i)

			var existing int
			if err := sqlx.GetContext(ctx, ext, &existing, existsQuery, id); err != nil {
				return stats, fmt.Errorf("check %s %q: %w", kind, id, err)
			}
			if existing > 0 && !overwrite {
				stats.Skipped++
				continue
			}
			if _, err := ext.ExecContext(ctx, statement, args...); err != nil {
				return stats, fmt.Errorf("write %s %q: %w", kind, id, err)
			}
			if existing > 0 {
				stats.Updates++
			} else {
				stats.Inserts++
			}
		}
	}
	return stats, nil
}

func upsertStatement(kind catalog.Kind, cols []catalog.Column, overwrite bool) string {
	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		names = append(names, c.Name)
	}
	names = append(names, "sort_order")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) `,
		kind, strings.Join(names, ", "), placeholders, names[0])
	if !overwrite {
		return query + "DO NOTHING"
	}
	sets := make([]string, 0, len(names)-1)
	for _, n := range names[1:] {
		sets = append(sets, n+" = excluded."+n)
	}
	return query + "DO UPDATE SET " + strings.Join(sets, ", ")
}

// StepConfig is a row of step_configs.
type StepConfig struct {
	StepID      string `db:"step_id"`
	Label       string `db:"label"`
	Visible     bool   `db:"visible"`
	CanBeHidden bool   `db:"can_be_hidden"`
}

// Steps lists the step configs in wizard order.
func (s *Store) Steps(ctx context.Context) ([]StepConfig, error) {
	steps := make([]StepConfig, 0)
	if err := s.db.SelectContext(ctx, &steps, `
		SELECT step_id, label, visible, can_be_hidden
		FROM step_configs
		ORDER BY sort_order, step_id
	`); err != nil {
		return nil, fmt.Errorf("query step configs: %w", err)
	}
	return steps, nil
}

// SetStepVisible toggles a step that can be hidden. Steps that cannot be hidden
// report ErrNotFound.
func (s *Store) SetStepVisible(ctx context.Context, stepID string, visible bool) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE step_configs
		SET visible = ?
		WHERE step_id = ? AND can_be_hidden = ?
	`), visible, stepID, true)
	if err != nil {
		return fmt.Errorf("update step config: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update step config: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminPasswordHash returns the stored bcrypt hash for email.
func (s *Store) AdminPasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := s.db.GetContext(ctx, &hash, s.db.Rebind(`SELECT password_hash FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user credentials: %w", err)
	}
	return hash, nil
}
