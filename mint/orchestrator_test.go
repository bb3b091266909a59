package mint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
)

// --- Фейки репозиториев и минтера ---

type fakeWinnerRepo struct {
	mu       sync.Mutex
	winners  map[int]*models.Winner
	setCalls int
}

func newFakeWinnerRepo(winners ...*models.Winner) *fakeWinnerRepo {
	m := make(map[int]*models.Winner, len(winners))
	for _, w := range winners {
		m[w.ID] = w
	}
	return &fakeWinnerRepo{winners: m}
}

func (f *fakeWinnerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, w *models.Winner) error {
	return errors.New("not used in orchestrator tests")
}

func (f *fakeWinnerRepo) GetByID(ctx context.Context, id int) (*models.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.winners[id]
	if !ok {
		return nil, repositories.ErrWinnerNotFound
	}
	copied := *w
	return &copied, nil
}

func (f *fakeWinnerRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.Winner, error) {
	return nil, repositories.ErrWinnerNotFound
}

func (f *fakeWinnerRepo) ListAll(ctx context.Context) ([]models.Winner, error) {
	return nil, nil
}

func (f *fakeWinnerRepo) ListByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error) {
	return nil, nil
}

func (f *fakeWinnerRepo) SetMintResult(ctx context.Context, exec repositories.SQLExecutor, id int, tokenID, metadataURI string, mintedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.winners[id]
	if !ok || w.NFTTokenID != nil {
		return repositories.ErrWinnerMintConflict
	}
	f.setCalls++
	w.NFTTokenID = &tokenID
	w.NFTMetadataURI = &metadataURI
	w.MintedAt = &mintedAt
	return nil
}

type fakeTournamentRepo struct {
	tournament *models.Tournament
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error { return nil }

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil || f.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return f.tournament, nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	return nil
}

func (f *fakeTournamentRepo) UpdateBadgeImageURL(ctx context.Context, id int, badgeImageURL string) error {
	return nil
}

func (f *fakeTournamentRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeTeamRepo struct {
	team *models.Team
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.team == nil || f.team.ID != id {
		return nil, repositories.ErrTeamNotFound
	}
	return f.team, nil
}

func (f *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	return nil, nil
}

type fakeMinter struct {
	mu      sync.Mutex
	calls   int
	docs    []Metadata
	outcome Outcome
	delay   time.Duration
}

func (f *fakeMinter) Mint(ctx context.Context, recipient string, doc Metadata, endpoint string) Outcome {
	f.mu.Lock()
	f.calls++
	f.docs = append(f.docs, doc)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			// Имитирует процесс, убитый отменой контекста.
			return Outcome{Success: false, Err: "killed"}
		case <-time.After(f.delay):
		}
	}
	return f.outcome
}

func (f *fakeMinter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- Хелперы ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func badgeURL(s string) *string { return &s }

func newTestOrchestrator(winners *fakeWinnerRepo, minter Minter) *Orchestrator {
	tournament := &models.Tournament{
		ID:            7,
		Title:         "Summer Solstice Cup",
		Month:         "June",
		Year:          2024,
		BadgeImageURL: badgeURL("https://x/img.png"),
		Status:        models.StatusCompleted,
	}
	team := &models.Team{
		ID:                   3,
		TournamentID:         7,
		Name:                 "Thunderbolts",
		CaptainWalletAddress: testWallet,
	}
	return NewOrchestrator(
		winners,
		&fakeTournamentRepo{tournament: tournament},
		&fakeTeamRepo{team: team},
		minter,
		"https://api.devnet.solana.com",
		nil,
		2,
		testLogger(),
	)
}

func unmintedWinner() *models.Winner {
	return &models.Winner{ID: 1, TournamentID: 7, TeamID: 3, WalletAddress: testWallet}
}

// --- Тесты ---

func TestProcessMint_Success(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{outcome: Outcome{Success: true, TokenID: "TOK1", MetadataURI: "https://arweave.net/meta"}}
	o := newTestOrchestrator(winners, minter)

	winner, err := o.ProcessMint(context.Background(), 1)
	if err != nil {
		t.Fatalf("ProcessMint returned error: %v", err)
	}
	if !winner.Minted() {
		t.Fatal("winner not marked minted")
	}
	if *winner.NFTTokenID != "TOK1" || *winner.NFTMetadataURI != "https://arweave.net/meta" {
		t.Errorf("unexpected mint result: token=%v uri=%v", *winner.NFTTokenID, *winner.NFTMetadataURI)
	}
	if winner.MintedAt == nil {
		t.Error("MintedAt not set")
	}
	if minter.callCount() != 1 {
		t.Errorf("minter calls = %d, want 1", minter.callCount())
	}
	if winners.setCalls != 1 {
		t.Errorf("SetMintResult calls = %d, want 1", winners.setCalls)
	}
}

func TestProcessMint_AlreadyMintedNoExternalCall(t *testing.T) {
	token := "EXISTING"
	minted := unmintedWinner()
	minted.NFTTokenID = &token
	winners := newFakeWinnerRepo(minted)
	minter := &fakeMinter{outcome: Outcome{Success: true, TokenID: "NEW"}}
	o := newTestOrchestrator(winners, minter)

	// Повторные вызовы по заминченному победителю — no-op оба раза.
	for i := 0; i < 2; i++ {
		winner, err := o.ProcessMint(context.Background(), 1)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if *winner.NFTTokenID != "EXISTING" {
			t.Errorf("call %d: token = %q, want EXISTING untouched", i, *winner.NFTTokenID)
		}
	}
	if minter.callCount() != 0 {
		t.Errorf("minter calls = %d, want 0", minter.callCount())
	}
}

func TestProcessMint_WinnerNotFound(t *testing.T) {
	o := newTestOrchestrator(newFakeWinnerRepo(), &fakeMinter{})

	_, err := o.ProcessMint(context.Background(), 99)
	if !errors.Is(err, repositories.ErrWinnerNotFound) {
		t.Errorf("err = %v, want ErrWinnerNotFound", err)
	}
}

func TestProcessMint_MissingTournamentIsInvalidState(t *testing.T) {
	w := unmintedWinner()
	w.TournamentID = 1000 // такого турнира нет
	winners := newFakeWinnerRepo(w)
	minter := &fakeMinter{outcome: Outcome{Success: true}}
	o := newTestOrchestrator(winners, minter)

	_, err := o.ProcessMint(context.Background(), 1)
	if !errors.Is(err, ErrInvalidWinnerState) {
		t.Errorf("err = %v, want ErrInvalidWinnerState", err)
	}
	if minter.callCount() != 0 {
		t.Errorf("minter calls = %d, want 0", minter.callCount())
	}
}

func TestProcessMint_CallerCancelDoesNotAbortMint(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{
		outcome: Outcome{Success: true, TokenID: "TOK1", MetadataURI: "https://arweave.net/meta"},
		delay:   100 * time.Millisecond,
	}
	o := newTestOrchestrator(winners, minter)

	// Вызывающий отваливается посреди внешнего вызова — минт обязан
	// дойти до конца и записать результат.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	winner, err := o.ProcessMint(ctx, 1)
	if err != nil {
		t.Fatalf("ProcessMint returned error: %v", err)
	}
	if !winner.Minted() {
		t.Error("mint interrupted by caller cancellation")
	}
	if winners.setCalls != 1 {
		t.Errorf("SetMintResult calls = %d, want 1", winners.setCalls)
	}
}

func TestProcessMint_SuccessWithoutTokenRejected(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{outcome: Outcome{Success: true, MetadataURI: "https://arweave.net/meta"}}
	o := newTestOrchestrator(winners, minter)

	_, err := o.ProcessMint(context.Background(), 1)
	if !errors.Is(err, ErrMintFailed) {
		t.Fatalf("err = %v, want ErrMintFailed", err)
	}

	// Пустой токен не должен попасть в базу: иначе запись навсегда
	// застрянет между Minted() и условным UPDATE-ом.
	w, getErr := winners.GetByID(context.Background(), 1)
	if getErr != nil {
		t.Fatal(getErr)
	}
	if w.NFTTokenID != nil || winners.setCalls != 0 {
		t.Errorf("empty token id persisted: token=%v setCalls=%d", w.NFTTokenID, winners.setCalls)
	}

	// Запись осталась ретраябельной, и исправный ответ её заминчивает.
	minter.outcome = Outcome{Success: true, TokenID: "TOK1", MetadataURI: "https://arweave.net/meta"}
	winner, err := o.ProcessMint(context.Background(), 1)
	if err != nil {
		t.Fatalf("retry after protocol violation: %v", err)
	}
	if !winner.Minted() || winners.setCalls != 1 {
		t.Errorf("retry did not mint: minted=%v setCalls=%d", winner.Minted(), winners.setCalls)
	}
}

func TestProcessMint_FailurePersistsNothing(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{outcome: Outcome{Success: false, Err: OutcomeErrTimeout}}
	o := newTestOrchestrator(winners, minter)

	_, err := o.ProcessMint(context.Background(), 1)
	if !errors.Is(err, ErrMintFailed) {
		t.Fatalf("err = %v, want ErrMintFailed", err)
	}

	// Запись осталась незаминченной, попытка ретраябельна.
	w, getErr := winners.GetByID(context.Background(), 1)
	if getErr != nil {
		t.Fatal(getErr)
	}
	if w.Minted() || w.NFTMetadataURI != nil || w.MintedAt != nil {
		t.Errorf("failed mint must not persist anything, got %+v", w)
	}
	if winners.setCalls != 0 {
		t.Errorf("SetMintResult calls = %d, want 0", winners.setCalls)
	}
}

func TestProcessMint_FreshSerialPerAttempt(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{outcome: Outcome{Success: false, Err: "broken"}}
	o := newTestOrchestrator(winners, minter)

	for i := 0; i < 2; i++ {
		if _, err := o.ProcessMint(context.Background(), 1); !errors.Is(err, ErrMintFailed) {
			t.Fatalf("attempt %d: err = %v, want ErrMintFailed", i, err)
		}
	}

	if len(minter.docs) != 2 {
		t.Fatalf("minter received %d documents, want 2", len(minter.docs))
	}
	first := minter.docs[0].Attributes[4].Value
	second := minter.docs[1].Attributes[4].Value
	if first == second {
		t.Errorf("serial id reused across attempts: %v", first)
	}
}

func TestProcessMint_ConcurrentCallsSingleExternalMint(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{
		outcome: Outcome{Success: true, TokenID: "TOK1", MetadataURI: "https://arweave.net/meta"},
		delay:   50 * time.Millisecond,
	}
	o := newTestOrchestrator(winners, minter)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.ProcessMint(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := minter.callCount(); got != 1 {
		t.Errorf("minter calls = %d, want exactly 1", got)
	}
	if winners.setCalls != 1 {
		t.Errorf("SetMintResult calls = %d, want exactly 1", winners.setCalls)
	}
}

func TestEnqueue_RunsInBackground(t *testing.T) {
	winners := newFakeWinnerRepo(unmintedWinner())
	minter := &fakeMinter{outcome: Outcome{Success: true, TokenID: "TOK1", MetadataURI: "u"}}
	o := newTestOrchestrator(winners, minter)

	o.Enqueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.Shutdown(ctx); err != nil {
		t.Fatalf("background mint did not finish: %v", err)
	}

	w, err := winners.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Minted() {
		t.Error("background mint did not persist result")
	}
}
