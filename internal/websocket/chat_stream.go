package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pm-assistant-be/internal/dto"
	"pm-assistant-be/internal/pkg/logger"
	"pm-assistant-be/internal/pkg/serverutils"
	"pm-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	maxQueuedTurns = 4
)

var errConnectionClosed = errors.New("websocket connection closed")

type inboundMessage struct {
	Message string `json:"message"`
}

// Client streams chat replies for one session over one connection.
type Client struct {
	Conn      *websocket.Conn
	SessionID string

	// Buffered channel of outbound frames.
	Send chan []byte

	turns  chan string
	done   chan struct{}
	chat   service.IChatService
	logger logger.ILogger
}

// NewChatStreamHandler upgrades /api/chat/ws. Each text message from the peer is
// one chat turn; the reply comes back as chunk frames followed by done or error.
func NewChatStreamHandler(chat service.IChatService, log logger.ILogger) fiber.Handler {
	ws := websocket.New(func(c *websocket.Conn) {
		sid, _ := c.Locals(serverutils.SessionIDKey).(string)
		ServeChat(c, sid, chat, log)
	})

	return func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		return ws(ctx)
	}
}

// ServeChat runs the pumps until the peer disconnects.
func ServeChat(conn *websocket.Conn, sessionID string, chat service.IChatService, log logger.ILogger) {
	client := &Client{
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		turns:     make(chan string, maxQueuedTurns),
		done:      make(chan struct{}),
		chat:      chat,
		logger:    log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.writePump()
	go client.turnLoop(ctx)
	client.readPump(cancel)

	// the connection is recycled once the handler returns
	<-client.done
}

// readPump feeds peer messages into the turn queue.
func (c *Client) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		close(c.turns)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("ChatStream", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err,
				})
			}
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(raw, &in); err != nil || in.Message == "" {
			// plain text frames are accepted as the message itself
			in.Message = string(raw)
		}

		select {
		case c.turns <- in.Message:
		default:
			c.sendFrame(dto.ChatFrameError, "too many pending messages")
		}
	}
}

// turnLoop answers queued turns one at a time so the history stays ordered.
// Its frames wait for room in Send, so a long reply is never cut short.
func (c *Client) turnLoop(ctx context.Context) {
	defer close(c.Send)

	for text := range c.turns {
		_, err := c.chat.StreamMessage(ctx, c.SessionID, text, func(chunk string) error {
			return c.queueFrame(ctx, dto.ChatFrameChunk, chunk)
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if c.queueFrame(ctx, dto.ChatFrameError, err.Error()) != nil {
				return
			}
			continue
		}
		if c.queueFrame(ctx, dto.ChatFrameDone, "") != nil {
			return
		}
	}
}

func encodeFrame(frameType, data string) []byte {
	payload, _ := json.Marshal(dto.ChatStreamFrame{Type: frameType, Data: data})
	return payload
}

// queueFrame blocks until the writer takes the frame or the connection goes away.
func (c *Client) queueFrame(ctx context.Context, frameType, data string) error {
	select {
	case c.Send <- encodeFrame(frameType, data):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errConnectionClosed
	}
}

// sendFrame drops the frame when Send is full. Only the reader uses it, which must
// not stall behind a streaming reply.
func (c *Client) sendFrame(frameType, data string) bool {
	select {
	case c.Send <- encodeFrame(frameType, data):
		return true
	default:
		return false
	}
}

// writePump writes one websocket message per frame and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
