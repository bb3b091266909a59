package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
)

type MatchResultInput struct {
	Team1ID    int  `json:"team1_id"`
	Team2ID    int  `json:"team2_id"`
	Round      int  `json:"round"`
	Team1Score *int `json:"team1_score"`
	Team2Score *int `json:"team2_score"`
	WinnerID   *int `json:"winner_id"`
}

type SubmitResultsInput struct {
	TournamentID int                `json:"tournament_id"`
	Matches      []MatchResultInput `json:"matches"`
}

type MatchService interface {
	SubmitResults(ctx context.Context, input SubmitResultsInput) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type matchService struct {
	db          *sql.DB
	matches     repositories.MatchRepository
	tournaments repositories.TournamentRepository
}

func NewMatchService(db *sql.DB, matches repositories.MatchRepository, tournaments repositories.TournamentRepository) MatchService {
	return &matchService{db: db, matches: matches, tournaments: tournaments}
}

// SubmitResults записывает пачку результатов матчей одной транзакцией:
// либо все строки, либо ни одной.
func (s *matchService) SubmitResults(ctx context.Context, input SubmitResultsInput) ([]models.Match, error) {
	if _, err := s.tournaments.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	for _, m := range input.Matches {
		if m.Team1ID == 0 || m.Team2ID == 0 || m.Team1ID == m.Team2ID {
			return nil, ErrMatchTeamsRequired
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	created := make([]models.Match, 0, len(input.Matches))
	for _, m := range input.Matches {
		playedAt := now
		match := models.Match{
			TournamentID: input.TournamentID,
			Team1ID:      m.Team1ID,
			Team2ID:      m.Team2ID,
			Round:        m.Round,
			Team1Score:   m.Team1Score,
			Team2Score:   m.Team2Score,
			WinnerID:     m.WinnerID,
			PlayedAt:     &playedAt,
		}
		if err := s.matches.Create(ctx, tx, &match); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("match insert failed: %w (rollback also failed: %v)", err, rbErr)
			}
			if errors.Is(err, repositories.ErrMatchInvalidTeam) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		created = append(created, match)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match results: %w", err)
	}
	return created, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	return s.matches.ListByTournament(ctx, tournamentID)
}
