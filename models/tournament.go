package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusOpen       TournamentStatus = "open"
	StatusInProgress TournamentStatus = "in_progress"
	StatusCompleted  TournamentStatus = "completed"
)

// Tournament представляет турнир.
// Title идёт на значок чемпиона, Name — внутреннее название события.
type Tournament struct {
	ID               int              `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Title            string           `json:"tournament_name" db:"tournament_name"`
	FormatType       string           `json:"format_type" db:"format_type"`
	Month            string           `json:"month" db:"month"`
	Year             int              `json:"year" db:"year"`
	BadgeImageURL    *string          `json:"badge_image_url,omitempty" db:"badge_image_url"`
	BadgeMetadataURL *string          `json:"badge_metadata_url,omitempty" db:"badge_metadata_url"`
	Status           TournamentStatus `json:"status" db:"status"`
	PasswordHash     *string          `json:"-" db:"password_hash"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`

	// Заполняется листинговыми запросами, не мапится напрямую.
	TeamCount int `json:"team_count" db:"-"`
}

// PasswordProtected reports whether registration requires a password.
func (t *Tournament) PasswordProtected() bool {
	return t.PasswordHash != nil && *t.PasswordHash != ""
}
