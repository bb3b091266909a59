package services

import (
	"context"
	"errors"

	"github.com/adilzhk/tournament-badges/mint"
	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
	"golang.org/x/crypto/bcrypt"
)

type RegisterTeamInput struct {
	TournamentID         int      `json:"tournament_id"`
	Name                 string   `json:"team_name"`
	Players              []string `json:"player_names"`
	CaptainWalletAddress string   `json:"captain_wallet_address"`
	// Пароль в открытом виде, как его выдал организатор.
	TournamentPassword *string `json:"tournament_password"`
}

type TeamService interface {
	RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
}

type teamService struct {
	teams       repositories.TeamRepository
	tournaments repositories.TournamentRepository
}

func NewTeamService(teams repositories.TeamRepository, tournaments repositories.TournamentRepository) TeamService {
	return &teamService{teams: teams, tournaments: tournaments}
}

func (s *teamService) RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.CaptainWalletAddress == "" {
		return nil, ErrWalletAddressRequired
	}
	// Кривой кошелёк ловим на регистрации, а не в момент минта месяцы спустя.
	if err := mint.ValidateWalletAddress(input.CaptainWalletAddress); err != nil {
		return nil, ErrInvalidWalletAddress
	}

	tournament, err := s.tournaments.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if tournament.Status != models.StatusOpen {
		return nil, ErrRegistrationNotOpen
	}

	// Пароль не задан — регистрация открытая.
	if tournament.PasswordProtected() {
		provided := ""
		if input.TournamentPassword != nil {
			provided = *input.TournamentPassword
		}
		if bcrypt.CompareHashAndPassword([]byte(*tournament.PasswordHash), []byte(provided)) != nil {
			return nil, ErrInvalidTournamentPassword
		}
	}

	players := input.Players
	if players == nil {
		players = []string{}
	}

	team := &models.Team{
		TournamentID:         input.TournamentID,
		Name:                 input.Name,
		Players:              players,
		CaptainWalletAddress: input.CaptainWalletAddress,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	return s.teams.ListByTournament(ctx, tournamentID)
}
