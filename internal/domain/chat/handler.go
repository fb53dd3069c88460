package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/errorhandler"
	"github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/validator"
)

// Handler handles chat HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListChats handles GET /chats
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.ListMyChats(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	items := make([]*SummaryResponse, len(chats))
	for i, c := range chats {
		items[i] = SummaryResponseFromEntity(c)
	}
	response.OK(w, items)
}

// GetChat handles GET /chats/{id}
// @Summary Poll a chat
// @Description Returns the most recent messages in ascending timestamp order. Fetching marks the other participant's messages delivered.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Param limit query int false "Messages to return"
// @Success 200 {object} response.Response{data=ChatResponse}
// @Failure 403,404 {object} response.Response
// @Router /chats/{id} [get]
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	view, err := h.service.GetChat(r.Context(), middleware.GetActor(r.Context()), chatID, parseLimit(r))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ChatResponseFromView(view))
}

// OpenForBooking handles GET /chats/booking/{bookingId}
func (h *Handler) OpenForBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	view, err := h.service.OpenForBooking(r.Context(), middleware.GetActor(r.Context()), bookingID, parseLimit(r))
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.OK(w, ChatResponseFromView(view))
}

// SendMessage handles POST /chats/{id}/messages
// @Summary Send a message
// @Description client_temp_id makes the send idempotent: resending it returns the stored message.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} response.Response{data=MessageResponse}
// @Failure 400,403,404,422,429 {object} response.Response
// @Router /chats/{id}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	content, err := DecodeContent(MessageType(req.MessageType), req.Content)
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	msg, err := h.service.SendMessage(r.Context(), middleware.GetActor(r.Context()), chatID, SendInput{
		ClientTempID: req.ClientTempID,
		Content:      content,
	})
	if err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.Created(w, MessageResponseFromEntity(msg))
}

// MarkAsRead handles POST /chats/{id}/read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	if err := h.service.MarkChatAsRead(r.Context(), middleware.GetActor(r.Context()), chatID); err != nil {
		errorhandler.Handle(r.Context(), w, err)
		return
	}

	response.NoContent(w)
}

func parseLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			return v
		}
	}
	return DefaultHistoryLimit
}
