package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("invalid team or tournament reference for match")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (tournament_id, team1_id, team2_id, round, team1_score, team2_score, winner_id, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Team1ID, m.Team2ID, m.Round,
		m.Team1Score, m.Team2Score, m.WinnerID, m.PlayedAt,
	).Scan(&m.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrMatchInvalidTeam
		}
		return err
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `
		SELECT id, tournament_id, team1_id, team2_id, round, team1_score, team2_score, winner_id, played_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Round,
			&m.Team1Score, &m.Team2Score, &m.WinnerID, &m.PlayedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
