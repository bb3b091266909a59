package models

import "time"

// Match — сыгранный или запланированный матч турнира.
// Раунд: 1 — первый круг, далее по сетке (полуфинал, финал и т.д.).
type Match struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Team1ID      int        `json:"team1_id" db:"team1_id"`
	Team2ID      int        `json:"team2_id" db:"team2_id"`
	Round        int        `json:"round" db:"round"`
	Team1Score   *int       `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int       `json:"team2_score,omitempty" db:"team2_score"`
	WinnerID     *int       `json:"winner_id,omitempty" db:"winner_id"`
	PlayedAt     *time.Time `json:"played_at,omitempty" db:"played_at"`
}
