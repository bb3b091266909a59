package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/repositories"
	"github.com/adilzhk/tournament-badges/storage"
	"golang.org/x/crypto/bcrypt"
)

type CreateTournamentInput struct {
	Name             string  `json:"name"`
	Title            string  `json:"tournament_name"`
	FormatType       string  `json:"format_type"`
	Month            string  `json:"month"`
	Year             int     `json:"year"`
	BadgeImageURL    *string `json:"badge_image_url"`
	BadgeMetadataURL *string `json:"badge_metadata_url"`
	// Необязательный пароль регистрации; хранится только bcrypt-хеш.
	Password *string `json:"tournament_password"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	ListOpenTournaments(ctx context.Context) ([]models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	UploadBadgeImage(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournaments repositories.TournamentRepository
	uploader    storage.FileUploader
}

func NewTournamentService(tournaments repositories.TournamentRepository, uploader storage.FileUploader) TournamentService {
	return &tournamentService{tournaments: tournaments, uploader: uploader}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" || input.Title == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Month == "" || input.Year == 0 {
		return nil, ErrTournamentPeriodRequired
	}
	if input.FormatType == "" {
		return nil, fmt.Errorf("%w: format_type is required", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:             input.Name,
		Title:            input.Title,
		FormatType:       input.FormatType,
		Month:            input.Month,
		Year:             input.Year,
		BadgeImageURL:    input.BadgeImageURL,
		BadgeMetadataURL: input.BadgeMetadataURL,
		Status:           models.StatusOpen,
	}

	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash tournament password: %w", err)
		}
		hashStr := string(hash)
		tournament.PasswordHash = &hashStr
	}

	if err := s.tournaments.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournaments.List(ctx, filter)
}

func (s *tournamentService) ListOpenTournaments(ctx context.Context) ([]models.Tournament, error) {
	status := models.StatusOpen
	return s.tournaments.List(ctx, repositories.ListTournamentsFilter{Status: &status})
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	err := s.tournaments.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// UploadBadgeImage кладёт картинку значка в хранилище и сохраняет
// публичный URL на турнире. Этот URL позже попадает в метаданные NFT.
func (s *tournamentService) UploadBadgeImage(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("badges/tournament_%d.png", tournament.ID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload badge image: %w", err)
	}

	if err := s.tournaments.UpdateBadgeImageURL(ctx, tournament.ID, result.Location); err != nil {
		return nil, err
	}
	tournament.BadgeImageURL = &result.Location
	return tournament, nil
}
