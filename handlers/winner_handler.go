package handlers

import (
	"errors"
	"net/http"

	"github.com/adilzhk/tournament-badges/services"
	"github.com/go-chi/chi/v5"
)

type WinnerHandler struct {
	winnerService services.WinnerService
	matchService  services.MatchService
}

func NewWinnerHandler(winnerService services.WinnerService, matchService services.MatchService) *WinnerHandler {
	return &WinnerHandler{winnerService: winnerService, matchService: matchService}
}

// SubmitResultsHandler обрабатывает POST /api/winner/submit-results
func (h *WinnerHandler) SubmitResultsHandler(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitResultsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID == 0 {
		badRequestResponse(w, r, errors.New("tournament_id is required"))
		return
	}

	matches, err := h.matchService.SubmitResults(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeclareWinnerHandler обрабатывает POST /api/winner/declare-winner
// Ответ возвращается сразу с незаминченной записью победителя; минт идёт
// в фоне, его исход виден по GET /api/nft/winner/{winnerID} или по
// websocket-событию.
func (h *WinnerHandler) DeclareWinnerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID int `json:"tournament_id"`
		TeamID       int `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID == 0 || input.TeamID == 0 {
		badRequestResponse(w, r, errors.New("tournament_id and team_id are required"))
		return
	}

	winner, err := h.winnerService.DeclareWinner(r.Context(), input.TournamentID, input.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "winner": winner}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HallOfChampionsHandler обрабатывает GET /api/winner/hall-of-champions
func (h *WinnerHandler) HallOfChampionsHandler(w http.ResponseWriter, r *http.Request) {
	winners, err := h.winnerService.HallOfChampions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"winners": winners}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// WinsByWalletHandler обрабатывает GET /api/winner/by-wallet/{walletAddress}
func (h *WinnerHandler) WinsByWalletHandler(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "walletAddress")
	if wallet == "" {
		badRequestResponse(w, r, errors.New("wallet address is required"))
		return
	}

	wins, err := h.winnerService.WinsByWallet(r.Context(), wallet)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"wins": wins}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
