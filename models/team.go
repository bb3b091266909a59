package models

import "time"

// Team — зарегистрированная команда. CaptainWalletAddress — единственный
// адрес, на который уходит значок чемпиона.
type Team struct {
	ID                   int       `json:"id" db:"id"`
	TournamentID         int       `json:"tournament_id" db:"tournament_id"`
	Name                 string    `json:"team_name" db:"team_name"`
	Players              []string  `json:"player_names" db:"-"`
	CaptainWalletAddress string    `json:"captain_wallet_address" db:"captain_wallet_address"`
	RegisteredAt         time.Time `json:"registered_at" db:"registered_at"`
}
