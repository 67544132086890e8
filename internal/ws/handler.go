package ws

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"fundhub/internal/domain"
	"fundhub/internal/security"
	"fundhub/internal/service"
)

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o == "*" {
			wildcard = true
		} else if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		if wildcard {
			return true
		}
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	// Browsers cannot set headers on WebSocket upgrades, so the token may
	// ride in as the second subprotocol: "bearer, <token>".
	if protocolHeader := r.Header.Get("Sec-WebSocket-Protocol"); protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1]
		}
	}
	return ""
}

// MakeHandler returns the HTTP handler for the /ws endpoint. After a Bearer
// handshake it dispatches client events:
//   - join-conversation -> enter the conversation's room
//   - send-message      -> persist, then broadcast new-message to the room
//   - typing            -> forward user-typing to the rest of the room
//   - stop-typing       -> forward user-stop-typing to the rest of the room
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	chat *service.ChatService,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin:  checkOrigin,
		Subprotocols: []string{"bearer"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractToken(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, ok := security.Subject(claims)
		if !ok {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		client := NewClient(user.ID, conn)
		defer func() {
			hub.Remove(client)
			client.Close()
		}()
		log.Printf("ws: client %s connected (user %d)", client.ID, user.ID)

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				return
			}
			eventType, _ := payload["type"].(string)
			switch eventType {

			case "join-conversation":
				convID := payloadID(payload, "conversation_id")
				if convID == 0 {
					sendError(client, "join-conversation requires conversation_id")
					continue
				}
				hub.Join(convID, client)

			case "send-message":
				convID := payloadID(payload, "conversation_id")
				senderID := payloadID(payload, "sender_id")
				senderType, _ := payload["sender_type"].(string)
				body, _ := payload["message"].(string)
				if senderID != user.ID {
					sendError(client, "sender_id does not match connection")
					continue
				}
				msg, err := chat.SendMessage(ctx, service.SendMessageInput{
					ConversationID: convID,
					SenderID:       senderID,
					SenderRole:     domain.Role(senderType),
					Body:           body,
				})
				if err != nil {
					log.Printf("ws: send-message: %v", err)
					sendError(client, "failed to send message")
					continue
				}
				// Broadcast only after the message is durably stored; the
				// sender gets the frame too and renders from it.
				hub.Broadcast(convID, map[string]any{
					"type":            "new-message",
					"id":              msg.ID,
					"conversation_id": msg.ConversationID,
					"sender_id":       msg.SenderID,
					"sender_type":     msg.SenderRole,
					"message":         msg.Body,
					"created_at":      msg.CreatedAt,
				})

			case "typing":
				convID := payloadID(payload, "conversation_id")
				if convID == 0 {
					continue
				}
				hub.BroadcastExcept(convID, client, map[string]any{
					"type":            "user-typing",
					"conversation_id": convID,
					"user_id":         user.ID,
				})

			case "stop-typing":
				convID := payloadID(payload, "conversation_id")
				if convID == 0 {
					continue
				}
				hub.BroadcastExcept(convID, client, map[string]any{
					"type":            "user-stop-typing",
					"conversation_id": convID,
					"user_id":         user.ID,
				})

			default:
				sendError(client, fmt.Sprintf("unknown event type %q", eventType))
			}
		}
	}
}

// payloadID reads an id field that arrives as a JSON number.
func payloadID(payload map[string]any, key string) int64 {
	f, _ := payload[key].(float64)
	return int64(f)
}

func sendError(c *Client, msg string) {
	_ = c.Send(map[string]any{
		"type":    "error",
		"message": msg,
	})
}
