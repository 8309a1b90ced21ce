package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/posadzki/internal/quote"
)

// SaveLead stores an exported quote. The full document is kept as JSON so the
// admin view shows exactly what the customer received.
func (s *Store) SaveLead(ctx context.Context, lead quote.Lead) error {
	doc := lead.Document
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode quote document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO quotes (id, number, created_at, channel, email, room_type, area, surface, color, total, document_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		doc.ID,
		doc.Number,
		doc.IssuedAt.UTC().Format(timeLayout),
		string(lead.Channel),
		lead.Email,
		doc.RoomType,
		doc.Area,
		doc.Surface,
		doc.Color,
		doc.Totals.Total,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", doc.Number, err)
	}
	return nil
}

// QuoteListItem is one row of the admin quotes list.
type QuoteListItem struct {
	ID        string  `db:"id"`
	Number    string  `db:"number"`
	CreatedAt string  `db:"created_at"`
	Channel   string  `db:"channel"`
	Email     string  `db:"email"`
	RoomType  string  `db:"room_type"`
	Area      float64 `db:"area"`
	Surface   string  `db:"surface"`
	Color     string  `db:"color"`
	Total     float64 `db:"total"`
}

// ListQuotes returns stored quotes, newest first. A non-empty query filters by
// number, email, room type or surface.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]QuoteListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + strings.ToLower(query) + "%"

	quotes := make([]QuoteListItem, 0)
	err := s.db.SelectContext(ctx, &quotes, s.db.Rebind(`
		SELECT id, number, created_at, channel, email, room_type, area, surface, color, total
		FROM quotes
		WHERE (? = ''
			OR LOWER(number) LIKE ?
			OR LOWER(email) LIKE ?
			OR LOWER(room_type) LIKE ?
			OR LOWER(surface) LIKE ?)
		ORDER BY created_at DESC, id DESC
	`), query, search, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	return quotes, nil
}

// StoredQuote is a quote as saved at export time.
type StoredQuote struct {
	Document  quote.Document
	Channel   quote.Channel
	Email     string
	CreatedAt time.Time
}

// GetQuote reads a stored quote by id. Amounts come from the saved document,
// not from the current catalog.
func (s *Store) GetQuote(ctx context.Context, id string) (StoredQuote, error) {
	var row struct {
		CreatedAt    string `db:"created_at"`
		Channel      string `db:"channel"`
		Email        string `db:"email"`
		DocumentJSON string `db:"document_json"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT created_at, channel, email, document_json
		FROM quotes
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredQuote{}, ErrNotFound
	}
	if err != nil {
		return StoredQuote{}, fmt.Errorf("query quote %s: %w", id, err)
	}

	var doc quote.Document
	if err := json.Unmarshal([]byte(row.DocumentJSON), &doc); err != nil {
		return StoredQuote{}, fmt.Errorf("decode quote %s: %w", id, err)
	}
	created, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		created = doc.IssuedAt
	}
	return StoredQuote{
		Document:  doc,
		Channel:   quote.Channel(row.Channel),
		Email:     row.Email,
		CreatedAt: created,
	}, nil
}
