package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamInvalidTournament = errors.New("invalid tournament reference for team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	// Состав команды хранится как JSON-массив в текстовой колонке.
	players, err := json.Marshal(team.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal player names: %w", err)
	}

	query := `
		INSERT INTO teams (tournament_id, team_name, player_names, captain_wallet_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, registered_at`

	err = r.db.QueryRowContext(ctx, query,
		team.TournamentID, team.Name, string(players), team.CaptainWalletAddress,
	).Scan(&team.ID, &team.RegisteredAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamInvalidTournament
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, tournament_id, team_name, player_names, captain_wallet_address, registered_at
		FROM teams
		WHERE id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	query := `
		SELECT id, tournament_id, team_name, player_names, captain_wallet_address, registered_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY registered_at`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, *team)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		team       models.Team
		playersRaw sql.NullString
	)
	if err := row.Scan(
		&team.ID, &team.TournamentID, &team.Name, &playersRaw,
		&team.CaptainWalletAddress, &team.RegisteredAt,
	); err != nil {
		return nil, err
	}

	team.Players = []string{}
	if playersRaw.Valid && playersRaw.String != "" {
		if err := json.Unmarshal([]byte(playersRaw.String), &team.Players); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player names for team %d: %w", team.ID, err)
		}
	}
	return &team, nil
}
