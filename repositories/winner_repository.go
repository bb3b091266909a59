package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/lib/pq"
)

var (
	ErrWinnerNotFound = errors.New("winner not found")
	// Уникальный индекс на winners.tournament_id — один чемпион на турнир.
	ErrWinnerAlreadyDeclared = errors.New("tournament already has a winner")
	// Условный UPDATE не нашёл незаминченную запись: либо её нет,
	// либо результат минта уже записан другой попыткой.
	ErrWinnerMintConflict = errors.New("winner already minted or not found")
)

type WinnerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, winner *models.Winner) error
	GetByID(ctx context.Context, id int) (*models.Winner, error)
	GetByTournament(ctx context.Context, tournamentID int) (*models.Winner, error)
	ListAll(ctx context.Context) ([]models.Winner, error)
	ListByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error)
	SetMintResult(ctx context.Context, exec SQLExecutor, id int, tokenID, metadataURI string, mintedAt time.Time) error
}

type postgresWinnerRepository struct {
	db *sql.DB
}

func NewPostgresWinnerRepository(db *sql.DB) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWinnerRepository) Create(ctx context.Context, exec SQLExecutor, w *models.Winner) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO winners (tournament_id, team_id, wallet_address)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		w.TournamentID, w.TeamID, w.WalletAddress,
	).Scan(&w.ID, &w.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrWinnerAlreadyDeclared
		}
		return err
	}
	return nil
}

const winnerColumns = `id, tournament_id, team_id, wallet_address, nft_token_id, nft_metadata_uri, minted_at, created_at`

func scanWinner(row rowScanner, w *models.Winner) error {
	return row.Scan(
		&w.ID, &w.TournamentID, &w.TeamID, &w.WalletAddress,
		&w.NFTTokenID, &w.NFTMetadataURI, &w.MintedAt, &w.CreatedAt,
	)
}

func (r *postgresWinnerRepository) GetByID(ctx context.Context, id int) (*models.Winner, error) {
	query := `SELECT ` + winnerColumns + ` FROM winners WHERE id = $1`

	w := &models.Winner{}
	if err := scanWinner(r.db.QueryRowContext(ctx, query, id), w); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *postgresWinnerRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Winner, error) {
	query := `SELECT ` + winnerColumns + ` FROM winners WHERE tournament_id = $1`

	w := &models.Winner{}
	if err := scanWinner(r.db.QueryRowContext(ctx, query, tournamentID), w); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWinnerNotFound
		}
		return nil, err
	}
	return w, nil
}

const winnerHallQuery = `
	SELECT
		w.id, w.tournament_id, w.team_id, w.wallet_address,
		w.nft_token_id, w.nft_metadata_uri, w.minted_at, w.created_at,
		tm.team_name, t.tournament_name, t.month, t.year, t.badge_image_url
	FROM winners w
	JOIN tournaments t ON t.id = w.tournament_id
	JOIN teams tm ON tm.id = w.team_id`

func (r *postgresWinnerRepository) listHall(ctx context.Context, query string, args ...interface{}) ([]models.Winner, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	winners := make([]models.Winner, 0)
	for rows.Next() {
		var w models.Winner
		if scanErr := rows.Scan(
			&w.ID, &w.TournamentID, &w.TeamID, &w.WalletAddress,
			&w.NFTTokenID, &w.NFTMetadataURI, &w.MintedAt, &w.CreatedAt,
			&w.TeamName, &w.TournamentTitle, &w.Month, &w.Year, &w.BadgeImageURL,
		); scanErr != nil {
			return nil, scanErr
		}
		winners = append(winners, w)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *postgresWinnerRepository) ListAll(ctx context.Context) ([]models.Winner, error) {
	return r.listHall(ctx, winnerHallQuery+` ORDER BY w.created_at DESC`)
}

func (r *postgresWinnerRepository) ListByWallet(ctx context.Context, walletAddress string) ([]models.Winner, error) {
	return r.listHall(ctx, winnerHallQuery+` WHERE w.wallet_address = $1 ORDER BY w.created_at DESC`, walletAddress)
}

// SetMintResult пишет результат минта одним UPDATE-ом. Условие
// nft_token_id IS NULL гарантирует, что поля результата пишутся не более
// одного раза, даже если две попытки дошли до записи.
func (r *postgresWinnerRepository) SetMintResult(ctx context.Context, exec SQLExecutor, id int, tokenID, metadataURI string, mintedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE winners
		SET nft_token_id = $1, nft_metadata_uri = $2, minted_at = $3
		WHERE id = $4 AND nft_token_id IS NULL`

	result, err := executor.ExecContext(ctx, query, tokenID, metadataURI, mintedAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrWinnerMintConflict)
}
