package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adilzhk/tournament-badges/models"
)

// Типы событий, уходящих подписчикам комнаты турнира.
const (
	EventWinnerDeclared = "WINNER_DECLARED"
	EventNFTMinted      = "NFT_MINTED"
	EventNFTMintFailed  = "NFT_MINT_FAILED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub раздаёт события пайплайна минта websocket-клиентам по комнатам.
// Комната — турнир: фронт подписывается на /ws/tournaments/{id} и видит
// объявление победителя и исход минта без поллинга.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("notify client registered",
				slog.String("room", client.room),
				slog.Int("room_clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, known := clients[client]; known {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom отправляет сообщение всем клиентам комнаты. Клиенты с
// забитым каналом пропускаются, а не блокируют рассылку.
func (h *Hub) BroadcastToRoom(roomID string, msg Message) {
	msg.RoomID = roomID
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal notify message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		client.enqueue(data)
	}
}

func roomForTournament(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

// WinnerMinted реализует mint.Notifier.
func (h *Hub) WinnerMinted(tournamentID int, winner *models.Winner) {
	h.BroadcastToRoom(roomForTournament(tournamentID), Message{
		Type:    EventNFTMinted,
		Payload: winner,
	})
}

// WinnerMintFailed реализует mint.Notifier.
func (h *Hub) WinnerMintFailed(tournamentID int, winnerID int, reason string) {
	h.BroadcastToRoom(roomForTournament(tournamentID), Message{
		Type: EventNFTMintFailed,
		Payload: map[string]interface{}{
			"winner_id": winnerID,
			"error":     reason,
		},
	})
}

// WinnerDeclared шлёт событие об объявлении чемпиона (минт ещё впереди).
func (h *Hub) WinnerDeclared(tournamentID int, winner *models.Winner) {
	h.BroadcastToRoom(roomForTournament(tournamentID), Message{
		Type:    EventWinnerDeclared,
		Payload: winner,
	})
}
