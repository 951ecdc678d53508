package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Register the pure-Go sqlite driver

	"github.com/wotvtools/cardscan/internal/vision"
)

// Lookup errors. ErrNotFound and ErrAmbiguousName are sentinels so
// callers can distinguish "try a better query" from infrastructure
// failures.
var (
	ErrNotFound      = errors.New("card not found")
	ErrAmbiguousName = errors.New("multiple cards match")
)

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	cost             INTEGER,
	hp               INTEGER,
	def              INTEGER,
	tp               INTEGER,
	spr              INTEGER,
	ap               INTEGER,
	dex              INTEGER,
	atk              INTEGER,
	agi              INTEGER,
	mag              INTEGER,
	luck             INTEGER,
	party_ability    TEXT,
	bestowed_effects TEXT NOT NULL DEFAULT '[]',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS cards_name_nocase ON cards (name COLLATE NOCASE);
`

// StoredCard is one extracted card as persisted in the library.
type StoredCard struct {
	// ID is the card's stable identifier, assigned on first insert.
	ID string `json:"id"`

	vision.Card

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AbilityMatch pairs a card with the ability strings that matched an
// ability search.
type AbilityMatch struct {
	Card StoredCard `json:"card"`

	// Matched lists the matching ability lines, party ability first.
	Matched []string `json:"matched"`
}

// Store persists extracted cards in SQLite. Safe for concurrent use;
// database/sql serializes access to the underlying connection pool.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the card library at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("library path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open library db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping library db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create library schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the library handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert inserts a card or, when a card with the same name (ignoring
// case) already exists, replaces its stats. Returns the stored card with
// its identifier and timestamps.
func (s *Store) Upsert(ctx context.Context, card vision.Card) (*StoredCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(card.Name)
	if name == "" {
		return nil, fmt.Errorf("card name is required")
	}
	card.Name = name

	effects, err := json.Marshal(effectsOrEmpty(card.BestowedEffects))
	if err != nil {
		return nil, fmt.Errorf("encode bestowed effects: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)

	var existing StoredCard
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at FROM cards WHERE name = ? COLLATE NOCASE`, name)
	var createdAtMillis int64
	switch err := row.Scan(&existing.ID, &createdAtMillis); {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE cards SET name = ?, cost = ?, hp = ?, def = ?, tp = ?, spr = ?, ap = ?,
				dex = ?, atk = ?, agi = ?, mag = ?, luck = ?, party_ability = ?,
				bestowed_effects = ?, updated_at = ?
			WHERE id = ?`,
			name, card.Cost, card.HP, card.DEF, card.TP, card.SPR, card.AP,
			card.DEX, card.ATK, card.AGI, card.MAG, card.Luck, card.PartyAbility,
			string(effects), now.UnixMilli(), existing.ID)
		if err != nil {
			return nil, fmt.Errorf("update card: %w", err)
		}
		return &StoredCard{
			ID:        existing.ID,
			Card:      card,
			CreatedAt: time.UnixMilli(createdAtMillis).UTC(),
			UpdatedAt: now,
		}, nil

	case errors.Is(err, sql.ErrNoRows):
		id := uuid.NewString()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO cards (id, name, cost, hp, def, tp, spr, ap, dex, atk, agi, mag,
				luck, party_ability, bestowed_effects, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, name, card.Cost, card.HP, card.DEF, card.TP, card.SPR, card.AP,
			card.DEX, card.ATK, card.AGI, card.MAG, card.Luck, card.PartyAbility,
			string(effects), now.UnixMilli(), now.UnixMilli())
		if err != nil {
			return nil, fmt.Errorf("insert card: %w", err)
		}
		return &StoredCard{ID: id, Card: card, CreatedAt: now, UpdatedAt: now}, nil

	default:
		return nil, fmt.Errorf("look up card: %w", err)
	}
}

// FindByName looks a card up by name, loosening progressively: exact
// match (ignoring case) first, then unique prefix match, then unique
// substring match. An ambiguous fuzzy match fails with ErrAmbiguousName
// listing the candidates; no match at all fails with ErrNotFound.
func (s *Store) FindByName(ctx context.Context, name string) (*StoredCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("card name is required")
	}

	cards, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(name)
	for i := range cards {
		if strings.ToLower(cards[i].Name) == lower {
			return &cards[i], nil
		}
	}

	if match, err := uniqueMatch(cards, lower, strings.HasPrefix); match != nil || err != nil {
		return match, err
	}
	if match, err := uniqueMatch(cards, lower, strings.Contains); match != nil || err != nil {
		return match, err
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// uniqueMatch returns the single card whose lowered name satisfies the
// predicate, ErrAmbiguousName when several do, and (nil, nil) when none.
func uniqueMatch(cards []StoredCard, lower string, match func(string, string) bool) (*StoredCard, error) {
	var found *StoredCard
	var names []string
	for i := range cards {
		if match(strings.ToLower(cards[i].Name), lower) {
			found = &cards[i]
			names = append(names, cards[i].Name)
		}
	}
	if len(names) > 1 {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousName, strings.Join(names, ", "))
	}
	return found, nil
}

// SearchByAbility finds cards whose party ability or bestowed effects
// contain the query, ignoring case.
func (s *Store) SearchByAbility(ctx context.Context, query string) ([]AbilityMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	cards, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []AbilityMatch
	for _, card := range cards {
		var matched []string
		if card.PartyAbility != nil && strings.Contains(strings.ToLower(*card.PartyAbility), query) {
			matched = append(matched, *card.PartyAbility)
		}
		for _, effect := range card.BestowedEffects {
			if strings.Contains(strings.ToLower(effect), query) {
				matched = append(matched, effect)
			}
		}
		if len(matched) > 0 {
			matches = append(matches, AbilityMatch{Card: card, Matched: matched})
		}
	}
	return matches, nil
}

// List returns every stored card ordered by name.
func (s *Store) List(ctx context.Context) ([]StoredCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cost, hp, def, tp, spr, ap, dex, atk, agi, mag, luck,
			party_ability, bestowed_effects, created_at, updated_at
		FROM cards ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []StoredCard
	for rows.Next() {
		var card StoredCard
		var effects string
		var createdAt, updatedAt int64
		err := rows.Scan(&card.ID, &card.Name, &card.Cost, &card.HP, &card.DEF,
			&card.TP, &card.SPR, &card.AP, &card.DEX, &card.ATK, &card.AGI,
			&card.MAG, &card.Luck, &card.PartyAbility, &effects, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		if err := json.Unmarshal([]byte(effects), &card.BestowedEffects); err != nil {
			return nil, fmt.Errorf("decode bestowed effects for %q: %w", card.Name, err)
		}
		if len(card.BestowedEffects) == 0 {
			card.BestowedEffects = nil
		}
		card.CreatedAt = time.UnixMilli(createdAt).UTC()
		card.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func effectsOrEmpty(effects []string) []string {
	if effects == nil {
		return []string{}
	}
	return effects
}
