package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/db"
	"github.com/batchmates/batchmates/internal/models"
)

// ImportStats counts the rows an import created. Rows that already existed
// are not counted.
type ImportStats struct {
	People              int `json:"people"`
	Interests           int `json:"interests"`
	NormalizedInterests int `json:"normalized_interests"`
	Links               int `json:"links"`
	Skipped             int `json:"skipped"`
}

// ImportStore loads profiles into the person/interest tables.
type ImportStore struct {
	Base
}

// NewImportStore creates an ImportStore with the given shared base.
func NewImportStore(base Base) *ImportStore {
	return &ImportStore{Base: base}
}

// importTx caches ids resolved during one import transaction.
type importTx struct {
	tx         pgx.Tx
	stats      ImportStats
	types      map[string]int
	normalized map[string]int
	interests  map[string]int
}

// ImportProfiles writes profiles and their interests in one transaction.
// Raw interests are normalised through mapping (exact key, then lower-cased
// key), falling back to "misc". Every insert skips existing rows, so importing
// the same file twice changes nothing. A NOTIFY on db.ImportChannel is sent
// with the commit.
func (s *ImportStore) ImportProfiles(ctx context.Context, profiles []models.Profile, mapping map[string]string) (ImportStats, error) {
	ctx, cancel := context.WithTimeout(ctx, importQueryTimeout)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("beginning import: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	it := &importTx{
		tx:         tx,
		types:      make(map[string]int, len(models.InterestTypes)),
		normalized: make(map[string]int),
		interests:  make(map[string]int),
	}

	for _, t := range models.InterestTypes {
		id, _, err := it.upsertName(ctx, "interest_types", t)
		if err != nil {
			return ImportStats{}, err
		}

		it.types[t] = id
	}

	for i := range profiles {
		if err := it.importProfile(ctx, &profiles[i], mapping); err != nil {
			return ImportStats{}, fmt.Errorf("importing %q: %w", profiles[i].Name, err)
		}
	}

	payload, err := json.Marshal(db.ImportEvent{
		People:    it.stats.People,
		Interests: it.stats.Interests,
		Links:     it.stats.Links,
	})
	if err != nil {
		return ImportStats{}, fmt.Errorf("encoding import event: %w", err)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", db.ImportChannel, string(payload)); err != nil {
		return ImportStats{}, fmt.Errorf("queueing import notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportStats{}, fmt.Errorf("committing import: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"people":               it.stats.People,
		"interests":            it.stats.Interests,
		"normalized_interests": it.stats.NormalizedInterests,
		"links":                it.stats.Links,
		"skipped":              it.stats.Skipped,
	}).Info("profiles imported")

	return it.stats, nil
}

func (it *importTx) importProfile(ctx context.Context, p *models.Profile, mapping map[string]string) error {
	personID, created, err := it.upsertPerson(ctx, p)
	if err != nil {
		return err
	}

	if created {
		it.stats.People++
	} else {
		it.stats.Skipped++
	}

	for _, t := range models.InterestTypes {
		for _, raw := range p.Interests(t) {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}

			interestID, err := it.resolveInterest(ctx, raw, mapping)
			if err != nil {
				return err
			}

			tag, err := it.tx.Exec(ctx, `
				INSERT INTO person_interests (person_id, interest_id, interest_type_id)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`, personID, interestID, it.types[t])
			if err != nil {
				return fmt.Errorf("linking interest %q: %w", raw, err)
			}

			it.stats.Links += int(tag.RowsAffected())
		}
	}

	return nil
}

func (it *importTx) upsertPerson(ctx context.Context, p *models.Profile) (int, bool, error) {
	var id int

	err := it.tx.QueryRow(ctx, `
		INSERT INTO people (name, role_and_institution, location)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id`, p.Name, p.RoleAndInstitution, p.Location).Scan(&id)
	if err == nil {
		return id, true, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("inserting person: %w", err)
	}

	if err := it.tx.QueryRow(ctx, `SELECT id FROM people WHERE lower(name) = lower($1)`, p.Name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("looking up person: %w", err)
	}

	return id, false, nil
}

// resolveInterest returns the id of the raw interest, creating it and its
// normalised parent when needed.
func (it *importTx) resolveInterest(ctx context.Context, raw string, mapping map[string]string) (int, error) {
	if id, ok := it.interests[raw]; ok {
		return id, nil
	}

	normName := NormalizeInterest(raw, mapping)

	normID, ok := it.normalized[normName]
	if !ok {
		id, created, err := it.upsertName(ctx, "normalized_interests", normName)
		if err != nil {
			return 0, err
		}

		if created {
			it.stats.NormalizedInterests++
		}

		it.normalized[normName] = id
		normID = id
	}

	var id int

	err := it.tx.QueryRow(ctx, `
		INSERT INTO interests (name, normalized_interest_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		RETURNING id`, raw, normID).Scan(&id)

	switch {
	case err == nil:
		it.stats.Interests++
	case errors.Is(err, pgx.ErrNoRows):
		if err := it.tx.QueryRow(ctx, `SELECT id FROM interests WHERE name = $1`, raw).Scan(&id); err != nil {
			return 0, fmt.Errorf("looking up interest %q: %w", raw, err)
		}
	default:
		return 0, fmt.Errorf("inserting interest %q: %w", raw, err)
	}

	it.interests[raw] = id

	return id, nil
}

// upsertName inserts name into a (id, name) lookup table unless present and
// returns its id. table is always a package constant.
func (it *importTx) upsertName(ctx context.Context, table, name string) (int, bool, error) {
	var id int

	ident := pgx.Identifier{table}.Sanitize()

	err := it.tx.QueryRow(ctx,
		"INSERT INTO "+ident+" (name) VALUES ($1) ON CONFLICT DO NOTHING RETURNING id", name).Scan(&id)
	if err == nil {
		return id, true, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("inserting into %s: %w", table, err)
	}

	if err := it.tx.QueryRow(ctx, "SELECT id FROM "+ident+" WHERE name = $1", name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("looking up %s: %w", table, err)
	}

	return id, false, nil
}
