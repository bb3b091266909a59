package mint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidWinnerState — победитель ссылается на несуществующий турнир
	// или команду. Фатально для попытки, но не для процесса.
	ErrInvalidWinnerState = errors.New("winner references missing tournament or team")
	// ErrMintFailed — внешний минтер вернул неуспех (таймаут, падение
	// процесса, нечитаемый ответ). Попытку можно повторить вручную.
	ErrMintFailed = errors.New("mint attempt failed")
)

// Notifier получает события пайплайна минта для out-of-band уведомлений.
type Notifier interface {
	WinnerMinted(tournamentID int, winner *models.Winner)
	WinnerMintFailed(tournamentID int, winnerID int, reason string)
}

// Orchestrator ведёт конечный автомат минта по записи победителя.
// Статус выводится из полей записи: nft_token_id IS NULL — не заминчен,
// иначе — заминчен, терминально. Промежуточного персистентного состояния
// "в процессе" нет, поэтому одновременные попытки по одному победителю
// схлопываются через singleflight, а запись результата защищена условным
// UPDATE-ом в репозитории.
type Orchestrator struct {
	winners     repositories.WinnerRepository
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	minter      Minter
	endpoint    string
	notifier    Notifier
	logger      *slog.Logger

	group   singleflight.Group
	workers *semaphore.Weighted
	wg      sync.WaitGroup
}

func NewOrchestrator(
	winners repositories.WinnerRepository,
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	minter Minter,
	endpoint string,
	notifier Notifier,
	maxWorkers int64,
	logger *slog.Logger,
) *Orchestrator {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Orchestrator{
		winners:     winners,
		tournaments: tournaments,
		teams:       teams,
		minter:      minter,
		endpoint:    endpoint,
		notifier:    notifier,
		logger:      logger,
		workers:     semaphore.NewWeighted(maxWorkers),
	}
}

// ProcessMint выполняет одну попытку минта для победителя. Идемпотентна:
// для уже заминченного победителя возвращает его запись без внешнего
// вызова. Параллельные вызовы по одному id делят одну попытку — наружу
// уходит не больше одного обращения к минтеру.
func (o *Orchestrator) ProcessMint(ctx context.Context, winnerID int) (*models.Winner, error) {
	v, err, _ := o.group.Do(strconv.Itoa(winnerID), func() (interface{}, error) {
		return o.processMint(ctx, winnerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Winner), nil
}

func (o *Orchestrator) processMint(ctx context.Context, winnerID int) (*models.Winner, error) {
	// Обрыв HTTP-запроса (ручной ретрай) не должен убивать внешний минт
	// на полпути или сорвать запись его результата: процесс мог уже
	// отправить транзакцию в сеть, и повтор после kill — это дабл-минт.
	// Единственная граница отмены — таймаут самого минтера.
	ctx = context.WithoutCancel(ctx)

	winner, err := o.winners.GetByID(ctx, winnerID)
	if err != nil {
		return nil, err
	}

	if winner.Minted() {
		o.logger.Info("winner already minted, skipping",
			slog.Int("winner_id", winnerID),
			slog.String("token_id", *winner.NFTTokenID))
		return winner, nil
	}

	tournament, err := o.tournaments.GetByID(ctx, winner.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %v", ErrInvalidWinnerState, winner.TournamentID, err)
	}
	team, err := o.teams.GetByID(ctx, winner.TeamID)
	if err != nil {
		return nil, fmt.Errorf("%w: team %d: %v", ErrInvalidWinnerState, winner.TeamID, err)
	}

	// Свежий серийник на каждую попытку: повторные заходы различимы
	// в метаданных и никогда не переиспользуют значение.
	serialID := uuid.NewString()

	badgeImageURL := ""
	if tournament.BadgeImageURL != nil {
		badgeImageURL = *tournament.BadgeImageURL
	}
	doc := BuildMetadata(tournament.Title, tournament.Month, tournament.Year, team.Name, badgeImageURL, serialID)

	outcome := o.minter.Mint(ctx, winner.WalletAddress, doc, o.endpoint)
	// Успех без tokenId от любой реализации Minter — нарушение контракта:
	// записав пустой токен, мы бы заклинили запись между Minted() и
	// условным UPDATE-ом. Попытка считается неуспешной и ретраябельной.
	if outcome.Success && outcome.TokenID == "" {
		outcome.Success = false
		outcome.Err = OutcomeErrUnparseable
	}
	if !outcome.Success {
		o.logger.Error("mint attempt failed",
			slog.Int("winner_id", winnerID),
			slog.String("reason", outcome.Err),
			slog.String("diagnostics", outcome.Diagnostics))
		if o.notifier != nil {
			o.notifier.WinnerMintFailed(winner.TournamentID, winnerID, outcome.Err)
		}
		// Запись победителя не трогаем: она остаётся незаминченной
		// и попытку можно повторить.
		return nil, fmt.Errorf("%w: %s", ErrMintFailed, outcome.Err)
	}

	mintedAt := time.Now().UTC()
	err = o.winners.SetMintResult(ctx, nil, winnerID, outcome.TokenID, outcome.MetadataURI, mintedAt)
	if err != nil {
		if errors.Is(err, repositories.ErrWinnerMintConflict) {
			// Кто-то успел записать результат раньше (другой процесс).
			// Наш токен теряется в пользу уже записанного — фиксируем в логе.
			o.logger.Warn("mint result already recorded, keeping existing",
				slog.Int("winner_id", winnerID),
				slog.String("discarded_token_id", outcome.TokenID))
			return o.winners.GetByID(ctx, winnerID)
		}
		return nil, fmt.Errorf("failed to persist mint result for winner %d: %w", winnerID, err)
	}

	winner.NFTTokenID = &outcome.TokenID
	winner.NFTMetadataURI = &outcome.MetadataURI
	winner.MintedAt = &mintedAt

	o.logger.Info("badge minted",
		slog.Int("winner_id", winnerID),
		slog.String("token_id", outcome.TokenID),
		slog.String("signature", outcome.Signature))
	if o.notifier != nil {
		o.notifier.WinnerMinted(winner.TournamentID, winner)
	}
	return winner, nil
}

// Enqueue запускает попытку минта в фоне, не блокируя вызывающего.
// Пул ограничен семафором: лишние задачи ждут, а не плодят горутины
// с внешними вызовами. Победитель передаётся по id — фоновая горутина
// перечитает запись из базы сама.
func (o *Orchestrator) Enqueue(winnerID int) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		if err := o.workers.Acquire(context.Background(), 1); err != nil {
			o.logger.Error("failed to acquire mint worker slot", slog.Any("error", err))
			return
		}
		defer o.workers.Release(1)

		if _, err := o.ProcessMint(context.Background(), winnerID); err != nil {
			// Ошибка фонового минта не возвращается вызывающему declare —
			// наблюдается через лог, уведомления и состояние записи.
			o.logger.Error("background mint failed",
				slog.Int("winner_id", winnerID),
				slog.Any("error", err))
		}
	}()
}

// Shutdown дожидается фоновых попыток минта или истечения контекста.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
