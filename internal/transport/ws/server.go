// Package ws serves text chat sessions over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/internal/service"
)

const (
	maxMessageSize = 64 * 1024
	readTimeout    = 90 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// Server handles WebSocket chat connections.
type Server struct {
	service  *service.Service
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(svc *service.Service) *Server {
	return &Server{
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the chat route.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/chat", s.HandleWebSocket)
}

// connection is one chat client. The front-end's attribute bag lives here
// between turns.
type connection struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	callerID  string
	inputMode domain.InputMode
	attrs     domain.Attributes
}

func (c *connection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// HandleWebSocket upgrades the request and serves the connection until it closes.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("failed to upgrade websocket", "error", err)
		return err
	}

	conn := &connection{ws: ws, attrs: domain.Attributes{}}
	ws.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(context.Background())
	go s.pingLoop(ctx, conn)
	s.readLoop(conn)
	cancel()
	ws.Close()
	return nil
}

func (s *Server) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.writeMu.Lock()
			err := conn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			conn.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// readLoop handles messages in order; each turn completes before the next is read.
func (s *Server) readLoop(conn *connection) {
	conn.ws.SetReadDeadline(time.Now().Add(readTimeout))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "caller_id", conn.callerID, "error", err)
			}
			return
		}
		conn.ws.SetReadDeadline(time.Now().Add(readTimeout))

		if done := s.handleMessage(conn, message); done {
			conn.writeMu.Lock()
			conn.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation ended"),
				time.Now().Add(writeTimeout))
			conn.writeMu.Unlock()
			return
		}
	}
}

// handleMessage dispatches one client message and reports whether the
// conversation is over.
func (s *Server) handleMessage(conn *connection, data []byte) bool {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid JSON message")
		return false
	}

	switch base.Type {
	case TypeHello:
		s.handleHello(conn, data)
		return false
	case TypeTurn:
		return s.handleTurn(conn, data)
	default:
		s.sendError(conn, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
		return false
	}
}

func (s *Server) handleHello(conn *connection, data []byte) {
	var msg HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.CallerID == "" {
		s.sendError(conn, ErrorCodeInvalidMessage, "hello requires caller_id")
		return
	}
	mode := domain.InputModeText
	if msg.InputMode != "" {
		parsed, ok := domain.ParseInputMode(msg.InputMode)
		if !ok {
			s.sendError(conn, ErrorCodeInvalidMessage, "input_mode must be text or voice")
			return
		}
		mode = parsed
	}

	conn.callerID = msg.CallerID
	conn.inputMode = mode
	conn.attrs = domain.Attributes{}

	conn.writeJSON(HelloAckMessage{
		BaseMessage: BaseMessage{Type: TypeHelloAck, Ts: time.Now().UnixMilli()},
		CallerID:    conn.callerID,
		InputMode:   string(mode),
	})
	slog.Info("chat connection bound", "caller_id", conn.callerID, "input_mode", mode)
}

func (s *Server) handleTurn(conn *connection, data []byte) bool {
	if conn.callerID == "" {
		s.sendError(conn, ErrorCodeHelloRequired, "must send hello first")
		return false
	}
	var msg TurnMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, ErrorCodeInvalidMessage, "invalid turn message")
		return false
	}

	outcome, err := s.service.ProcessTurn(context.Background(), domain.TurnRequest{
		CallerID:   conn.callerID,
		Utterance:  msg.Text,
		InputMode:  conn.inputMode,
		Attributes: conn.attrs,
	})
	if err != nil {
		code := ErrorCodeInternal
		if errors.Is(err, domain.ErrInvalidRequest) {
			code = ErrorCodeInvalidMessage
		}
		s.sendError(conn, code, err.Error())
		return false
	}
	conn.attrs = outcome.Attributes

	base := BaseMessage{Ts: time.Now().UnixMilli()}
	switch outcome.Kind {
	case domain.OutcomeTransfer:
		base.Type = TypeTransfer
		conn.writeJSON(TransferMessage{BaseMessage: base, PhoneNumber: outcome.TransferNumber, Note: outcome.Note})
		return true
	case domain.OutcomeEnd:
		base.Type = TypeEnd
		conn.writeJSON(EndMessage{BaseMessage: base})
		return true
	}
	base.Type = TypeReply
	conn.writeJSON(ReplyMessage{BaseMessage: base, Text: outcome.Reply})
	return false
}

func (s *Server) sendError(conn *connection, code, message string) {
	if err := conn.writeJSON(ErrorMessage{
		BaseMessage: BaseMessage{Type: TypeError, Ts: time.Now().UnixMilli()},
		Code:        code,
		Message:     message,
	}); err != nil {
		slog.Warn("failed to send error", "error", err)
	}
}
