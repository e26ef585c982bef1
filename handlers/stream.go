package handlers

import (
	"context"
	"net/http"
	"time"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/booking"
	"fixit/services/chat"
	"fixit/services/user"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// Stream frame types.
const (
	FrameSession       = "session"
	FrameBookings      = "bookings"
	FrameConversations = "conversations"
)

// StreamFrame is one message pushed to a connected client.
type StreamFrame struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// StreamHandler pushes the current actor and its scoped bookings and
// conversations over a websocket for as long as the client stays connected.
type StreamHandler struct {
	UserService    user.UserService
	BookingService booking.BookingService
	ChatService    chat.ChatService
	Upgrader       websocket.Upgrader
}

func NewStreamHandler(users user.UserService, bookings booking.BookingService, chats chat.ChatService) *StreamHandler {
	return &StreamHandler{
		UserService:    users,
		BookingService: bookings,
		ChatService:    chats,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// StreamHandler handles GET /api/stream.
func (h *StreamHandler) StreamHandler(c *gin.Context) {
	logger := getLogger(c)
	actorID, role := middleware.ActorFrom(c)

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go readPump(conn, cancel)

	session := h.UserService.Observe(ctx, actorID)
	bookings := h.BookingService.Subscribe(ctx, actorID, role)
	conversations := h.ChatService.Subscribe(ctx, actorID, role)

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	logger.Info("Stream opened", zap.String("actorID", actorID))
	defer logger.Info("Stream closed", zap.String("actorID", actorID))

	for {
		var frame StreamFrame
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-session:
			if !ok {
				return
			}
			frame = StreamFrame{Type: FrameSession, Payload: ev}
			if ev.Actor == nil {
				// Signed out elsewhere: deliver the onboarding route and hang up.
				_ = writeFrame(conn, frame)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, models.RouteOnboarding),
					time.Now().Add(streamWriteWait))
				return
			}
		case snap, ok := <-bookings:
			if !ok {
				bookings = nil
				continue
			}
			frame = StreamFrame{Type: FrameBookings, Payload: snap}
		case snap, ok := <-conversations:
			if !ok {
				conversations = nil
				continue
			}
			frame = StreamFrame{Type: FrameConversations, Payload: snap}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		if err := writeFrame(conn, frame); err != nil {
			logger.Debug("Stream write failed", zap.String("actorID", actorID), zap.Error(err))
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, frame StreamFrame) error {
	frame.Timestamp = time.Now().UTC()
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(frame)
}

// readPump discards client frames and cancels the stream once the peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
