package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fundhub/internal/domain"
	"fundhub/internal/service"
	"fundhub/internal/ws"
)

type createConversationRequest struct {
	InvestorID int64 `json:"investor_id"`
	OwnerID    int64 `json:"owner_id"`
	CampaignID int64 `json:"campaign_id"`
}

type sendMessageRequest struct {
	ConversationID int64  `json:"conversation_id"`
	SenderID       int64  `json:"sender_id"`
	SenderType     string `json:"sender_type"`
	Message        string `json:"message"`
}

type markReadRequest struct {
	ConversationID int64  `json:"conversation_id"`
	UserType       string `json:"user_type"`
}

func handleCreateConversation(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createConversationRequest
		if !decodeBody(w, r, &req) {
			return
		}
		conv, err := chatSvc.GetOrCreateConversation(r.Context(), req.InvestorID, req.OwnerID, req.CampaignID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, conv)
	}
}

func handleListConversations(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "invalid user id")
			return
		}
		role := domain.Role(chi.URLParam(r, "userType"))

		convs, err := chatSvc.ListConversations(r.Context(), userID, role)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, convs)
	}
}

func handleListMessages(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID, err := strconv.ParseInt(chi.URLParam(r, "conversationID"), 10, 64)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "invalid conversation id")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		msgs, err := chatSvc.ListMessages(r.Context(), convID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, http.StatusOK, msgs)
	}
}

// handleSendMessage persists a message over REST and relays it to any room
// members connected over WebSocket, so both transports stay in sync.
func handleSendMessage(chatSvc *service.ChatService, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if !decodeBody(w, r, &req) {
			return
		}
		msg, err := chatSvc.SendMessage(r.Context(), service.SendMessageInput{
			ConversationID: req.ConversationID,
			SenderID:       req.SenderID,
			SenderRole:     domain.Role(req.SenderType),
			Body:           req.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		hub.Broadcast(msg.ConversationID, map[string]any{
			"type":            "new-message",
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"sender_type":     msg.SenderRole,
			"message":         msg.Body,
			"created_at":      msg.CreatedAt,
		})
		writeData(w, http.StatusCreated, msg)
	}
}

func handleMarkRead(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markReadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := chatSvc.MarkRead(r.Context(), req.ConversationID, domain.Role(req.UserType)); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "conversation marked read")
	}
}
