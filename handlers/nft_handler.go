package handlers

import (
	"context"
	"net/http"

	"github.com/adilzhk/tournament-badges/models"
	"github.com/adilzhk/tournament-badges/services"
)

// MintProcessor — синхронная попытка минта для ручного ретрая.
// Реализуется mint.Orchestrator.
type MintProcessor interface {
	ProcessMint(ctx context.Context, winnerID int) (*models.Winner, error)
}

type NFTHandler struct {
	processor     MintProcessor
	winnerService services.WinnerService
}

func NewNFTHandler(processor MintProcessor, winnerService services.WinnerService) *NFTHandler {
	return &NFTHandler{processor: processor, winnerService: winnerService}
}

// MintHandler обрабатывает POST /api/nft/mint/{winnerID} — ручной ретрай.
// Идемпотентен: для уже заминченного победителя возвращает его запись
// без нового внешнего вызова.
func (h *NFTHandler) MintHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "winnerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	winner, err := h.processor.ProcessMint(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "winner": winner}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetWinnerNFTHandler обрабатывает GET /api/nft/winner/{winnerID}
func (h *NFTHandler) GetWinnerNFTHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "winnerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	winner, err := h.winnerService.GetWinner(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"winner": winner}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
