package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
)

// Валиден синтаксически: 44 base58-символа.
var testWalletAddress = strings.Repeat("A", 44)

// --- Фейки репозиториев (общие для тестов пакета) ---

type stubTournamentRepo struct {
	tournament *models.Tournament
}

func (s *stubTournamentRepo) Create(ctx context.Context, t *models.Tournament) error { return nil }

func (s *stubTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if s.tournament == nil || s.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return s.tournament, nil
}

func (s *stubTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return nil, nil
}

func (s *stubTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	return nil
}

func (s *stubTournamentRepo) UpdateBadgeImageURL(ctx context.Context, id int, badgeImageURL string) error {
	return nil
}

func (s *stubTournamentRepo) Delete(ctx context.Context, id int) error { return nil }

type stubTeamRepo struct {
	team    *models.Team
	created []*models.Team
}

func (s *stubTeamRepo) Create(ctx context.Context, team *models.Team) error {
	team.ID = len(s.created) + 1
	s.created = append(s.created, team)
	return nil
}

func (s *stubTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if s.team == nil || s.team.ID != id {
		return nil, repositories.ErrTeamNotFound
	}
	return s.team, nil
}

func (s *stubTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	return nil, nil
}

type stubWinnerRepo struct {
	existing *models.Winner
	created  []*models.Winner
}

func (s *stubWinnerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, winner *models.Winner) error {
	s.created = append(s.created, winner)
	return nil
}

func (s *stubWinnerRepo) GetByID(ctx context.Context, id int) (*models.Winner, error) {
	return nil, repositories.ErrWinnerNotFound
}

func (s *stubWinnerRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.Winner, error) {
	if s.existing != nil && s.existing.TournamentID == tournamentID {
		return s.existing, nil
	}
	return nil, repositories.ErrWinnerNotFound
}

func (s *stubWinnerRepo) ListAll(ctx context.Context) ([]models.Winner, error) { return nil, nil }

func (s *stubWinnerRepo) ListByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error) {
	return nil, nil
}

func (s *stubWinnerRepo) SetMintResult(ctx context.Context, exec repositories.SQLExecutor, id int, tokenID, metadataURI string, mintedAt time.Time) error {
	return nil
}

type stubDispatcher struct {
	enqueued []int
}

func (s *stubDispatcher) Enqueue(winnerID int) {
	s.enqueued = append(s.enqueued, winnerID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- DeclareWinner: прекондиции ---
// Успешный путь ходит в транзакцию *sql.DB и покрывается интеграционно;
// здесь проверяем, что до транзакции и диспатча дело не доходит.

func declareFixture(tournament *models.Tournament, team *models.Team, existing *models.Winner) (WinnerService, *stubWinnerRepo, *stubDispatcher) {
	winners := &stubWinnerRepo{existing: existing}
	dispatcher := &stubDispatcher{}
	svc := NewWinnerService(
		nil,
		winners,
		&stubTournamentRepo{tournament: tournament},
		&stubTeamRepo{team: team},
		dispatcher,
		nil,
		discardLogger(),
	)
	return svc, winners, dispatcher
}

func TestDeclareWinner_TournamentNotFound(t *testing.T) {
	svc, winners, dispatcher := declareFixture(nil, nil, nil)

	_, err := svc.DeclareWinner(context.Background(), 1, 1)
	if !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("err = %v, want ErrTournamentNotFound", err)
	}
	if len(winners.created) != 0 || len(dispatcher.enqueued) != 0 {
		t.Error("no writes or dispatch expected on precondition failure")
	}
}

func TestDeclareWinner_TeamNotFound(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Status: models.StatusInProgress}
	svc, winners, dispatcher := declareFixture(tournament, nil, nil)

	_, err := svc.DeclareWinner(context.Background(), 1, 5)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("err = %v, want ErrTeamNotFound", err)
	}
	if len(winners.created) != 0 || len(dispatcher.enqueued) != 0 {
		t.Error("no writes or dispatch expected on precondition failure")
	}
}

func TestDeclareWinner_TeamFromOtherTournament(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Status: models.StatusInProgress}
	team := &models.Team{ID: 5, TournamentID: 2, CaptainWalletAddress: testWalletAddress}
	svc, winners, dispatcher := declareFixture(tournament, team, nil)

	_, err := svc.DeclareWinner(context.Background(), 1, 5)
	if !errors.Is(err, ErrTeamNotInTournament) {
		t.Errorf("err = %v, want ErrTeamNotInTournament", err)
	}
	if len(winners.created) != 0 || len(dispatcher.enqueued) != 0 {
		t.Error("no writes or dispatch expected on precondition failure")
	}
}

func TestDeclareWinner_AlreadyDeclared(t *testing.T) {
	tournament := &models.Tournament{ID: 1, Status: models.StatusCompleted}
	team := &models.Team{ID: 5, TournamentID: 1, CaptainWalletAddress: testWalletAddress}
	existing := &models.Winner{ID: 9, TournamentID: 1, TeamID: 5}
	svc, winners, dispatcher := declareFixture(tournament, team, existing)

	_, err := svc.DeclareWinner(context.Background(), 1, 5)
	if !errors.Is(err, ErrWinnerAlreadyDeclared) {
		t.Errorf("err = %v, want ErrWinnerAlreadyDeclared", err)
	}
	if len(winners.created) != 0 {
		t.Error("second declaration must not create a winner row")
	}
	if len(dispatcher.enqueued) != 0 {
		t.Error("second declaration must not trigger a mint")
	}
}

func TestGetWinner_NotFound(t *testing.T) {
	svc, _, _ := declareFixture(nil, nil, nil)

	_, err := svc.GetWinner(context.Background(), 42)
	if !errors.Is(err, ErrWinnerNotFound) {
		t.Errorf("err = %v, want ErrWinnerNotFound", err)
	}
}
