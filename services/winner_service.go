package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
)

// MintDispatcher ставит фоновую попытку минта в очередь. Продакшен-реализация —
// mint.Orchestrator; в тестах подменяется фейком.
type MintDispatcher interface {
	Enqueue(winnerID int)
}

// DeclarationNotifier получает событие об объявлении чемпиона для
// out-of-band подписчиков (websocket-комната турнира).
type DeclarationNotifier interface {
	WinnerDeclared(tournamentID int, winner *models.Winner)
}

type WinnerService interface {
	// DeclareWinner объявляет чемпиона турнира: атомарно переводит турнир
	// в completed, создаёт запись победителя и уже после коммита отдаёт её
	// id в фоновый минт. Ответ не ждёт минта — возвращается незаминченная
	// запись.
	DeclareWinner(ctx context.Context, tournamentID, teamID int) (*models.Winner, error)
	GetWinner(ctx context.Context, winnerID int) (*models.Winner, error)
	HallOfChampions(ctx context.Context) ([]models.Winner, error)
	WinsByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error)
}

type winnerService struct {
	db          *sql.DB
	winners     repositories.WinnerRepository
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	dispatcher  MintDispatcher
	notifier    DeclarationNotifier
	logger      *slog.Logger
}

func NewWinnerService(
	db *sql.DB,
	winners repositories.WinnerRepository,
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	dispatcher MintDispatcher,
	notifier DeclarationNotifier,
	logger *slog.Logger,
) WinnerService {
	return &winnerService{
		db:          db,
		winners:     winners,
		tournaments: tournaments,
		teams:       teams,
		dispatcher:  dispatcher,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *winnerService) DeclareWinner(ctx context.Context, tournamentID, teamID int) (*models.Winner, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.TournamentID != tournament.ID {
		return nil, ErrTeamNotInTournament
	}

	// Ранняя проверка для внятной ошибки; гонку двух одновременных
	// объявлений всё равно закрывает уникальный индекс в транзакции ниже.
	if _, err := s.winners.GetByTournament(ctx, tournamentID); err == nil {
		return nil, ErrWinnerAlreadyDeclared
	} else if !errors.Is(err, repositories.ErrWinnerNotFound) {
		return nil, err
	}

	winner := &models.Winner{
		TournamentID: tournamentID,
		TeamID:       teamID,
		// Кошелёк копируется сейчас: более поздние правки команды
		// не меняют получателя значка.
		WalletAddress: team.CaptainWalletAddress,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.tournaments.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("status update failed: %w (rollback also failed: %v)", err, rbErr)
		}
		return nil, err
	}

	if err := s.winners.Create(ctx, tx, winner); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("winner insert failed: %w (rollback also failed: %v)", err, rbErr)
		}
		if errors.Is(err, repositories.ErrWinnerAlreadyDeclared) {
			return nil, ErrWinnerAlreadyDeclared
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit winner declaration: %w", err)
	}

	s.logger.Info("winner declared",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_id", teamID),
		slog.Int("winner_id", winner.ID))

	if s.notifier != nil {
		s.notifier.WinnerDeclared(tournamentID, winner)
	}

	// Диспатч строго после коммита: фоновая горутина перечитает запись
	// по id и не должна увидеть отсутствующую строку.
	s.dispatcher.Enqueue(winner.ID)

	return winner, nil
}

func (s *winnerService) GetWinner(ctx context.Context, winnerID int) (*models.Winner, error) {
	winner, err := s.winners.GetByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrWinnerNotFound) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}
	return winner, nil
}

func (s *winnerService) HallOfChampions(ctx context.Context) ([]models.Winner, error) {
	return s.winners.ListAll(ctx)
}

func (s *winnerService) WinsByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error) {
	return s.winners.ListByWallet(ctx, walletAddress)
}
