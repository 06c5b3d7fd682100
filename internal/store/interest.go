package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/batchmates/batchmates/internal/models"
)

// InterestStore answers neighbor lookups over the person/interest tables.
type InterestStore struct {
	Base
}

// NewInterestStore creates an InterestStore with the given shared base.
func NewInterestStore(base Base) *InterestStore {
	return &InterestStore{Base: base}
}

// InterestsForPerson returns the distinct normalised interests of the person
// whose name matches case-insensitively, sorted by name.
func (s *InterestStore) InterestsForPerson(ctx context.Context, name string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("interests for person: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var personID int

	err = tx.QueryRow(ctx, `SELECT id FROM people WHERE lower(name) = lower($1)`, name).Scan(&personID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrPersonNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("looking up person: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT DISTINCT ni.name
		FROM person_interests pi
		JOIN interests i ON i.id = pi.interest_id
		JOIN normalized_interests ni ON ni.id = i.normalized_interest_id
		WHERE pi.person_id = $1 AND ni.name <> $2
		ORDER BY ni.name`, personID, unmappedInterest)
	if err != nil {
		return nil, fmt.Errorf("querying person interests: %w", err)
	}

	interests, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning person interests: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing interests for person: %w", err)
	}

	return interests, nil
}

// PeopleForInterest returns the names of everyone holding the normalised
// interest, sorted by name.
func (s *InterestStore) PeopleForInterest(ctx context.Context, interest string) ([]string, error) {
	if interest == unmappedInterest {
		return nil, models.ErrInterestNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("people for interest: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var normalizedID int

	err = tx.QueryRow(ctx, `SELECT id FROM normalized_interests WHERE name = $1`, interest).Scan(&normalizedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInterestNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("looking up interest: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT DISTINCT p.name
		FROM person_interests pi
		JOIN interests i ON i.id = pi.interest_id
		JOIN people p ON p.id = pi.person_id
		WHERE i.normalized_interest_id = $1
		ORDER BY p.name`, normalizedID)
	if err != nil {
		return nil, fmt.Errorf("querying interest people: %w", err)
	}

	people, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning interest people: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing people for interest: %w", err)
	}

	return people, nil
}

// ListInterests returns the interest catalogue ordered by how many people
// share each interest. A non-empty query filters by substring.
func (s *InterestStore) ListInterests(ctx context.Context, query string, limit int) ([]models.Interest, error) {
	limit = clampLimit(limit, 50)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sql := `
		SELECT ni.name, COUNT(DISTINCT pi.person_id)::int
		FROM normalized_interests ni
		JOIN interests i ON i.normalized_interest_id = ni.id
		JOIN person_interests pi ON pi.interest_id = i.id
		WHERE ni.name <> $1`

	args := []any{unmappedInterest}
	argIdx := 2

	if query = strings.TrimSpace(query); query != "" {
		sql += fmt.Sprintf(" AND ni.name ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(strings.ToLower(query))+"%")
		argIdx++
	}

	sql += fmt.Sprintf(` GROUP BY ni.name ORDER BY 2 DESC, ni.name LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing interests: %w", err)
	}

	interests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Interest, error) {
		var in models.Interest
		err := row.Scan(&in.Name, &in.PeopleCount)

		return in, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning interests: %w", err)
	}

	return interests, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
