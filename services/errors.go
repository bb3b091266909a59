package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentPeriodRequired  = errors.New("tournament month and year are required")
	ErrTeamNameRequired          = errors.New("team name is required")
	ErrWalletAddressRequired     = errors.New("captain wallet address is required")
	ErrInvalidWalletAddress      = errors.New("captain wallet address is not a valid solana address")
	ErrRegistrationNotOpen       = errors.New("tournament registration is not open")
	ErrInvalidTournamentPassword = errors.New("invalid tournament password")
	ErrMatchTeamsRequired        = errors.New("match requires two distinct teams")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrWinnerAlreadyDeclared  = errors.New("tournament already has a winner")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid admin credentials")

	// Ошибки "не найдено", по одной на сущность
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrWinnerNotFound      = errors.New("winner not found")
	ErrTeamNotInTournament = errors.New("team is not registered for this tournament")
)
