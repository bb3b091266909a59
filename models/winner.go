package models

import "time"

// Winner — чемпион турнира. Кошелёк копируется из команды в момент
// объявления победителя и дальше не зависит от правок команды.
//
// Три поля результата минта (NFTTokenID, NFTMetadataURI, MintedAt) пишет
// только оркестратор минта, ровно один раз, при успехе. Пока NFTTokenID
// равен NULL, запись считается не заминченной и попытку можно повторять.
type Winner struct {
	ID             int        `json:"id" db:"id"`
	TournamentID   int        `json:"tournament_id" db:"tournament_id"`
	TeamID         int        `json:"team_id" db:"team_id"`
	WalletAddress  string     `json:"wallet_address" db:"wallet_address"`
	NFTTokenID     *string    `json:"nft_token_id" db:"nft_token_id"`
	NFTMetadataURI *string    `json:"nft_metadata_uri" db:"nft_metadata_uri"`
	MintedAt       *time.Time `json:"minted_at" db:"minted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	// Опциональные связанные поля (заполняются JOIN-ами для витрин).
	TeamName        *string `json:"team_name,omitempty" db:"-"`
	TournamentTitle *string `json:"tournament_name,omitempty" db:"-"`
	Month           *string `json:"month,omitempty" db:"-"`
	Year            *int    `json:"year,omitempty" db:"-"`
	BadgeImageURL   *string `json:"badge_image_url,omitempty" db:"-"`
}

// Minted reports whether the badge has already been minted for this winner.
// Статус выводится из полей, отдельного enum в БД нет.
func (w *Winner) Minted() bool {
	return w.NFTTokenID != nil && *w.NFTTokenID != ""
}
