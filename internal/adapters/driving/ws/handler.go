// Package ws serves conversational answering over websockets. Each
// connection owns one conversation history.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Message types.
const (
	TypeAsk    = "ask"
	TypeAnswer = "answer"
	TypeReset  = "reset"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeError  = "error"
)

const (
	maxMessageSize = 512 * 1024
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	writeWait      = 10 * time.Second
)

// Request is a client frame.
type Request struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// Source is one context record sent with an answer.
type Source struct {
	Document string  `json:"document,omitempty"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// Response is a server frame.
type Response struct {
	Type    string   `json:"type"`
	Answer  string   `json:"answer,omitempty"`
	Sources []Source `json:"sources,omitempty"`
	Failed  bool     `json:"failed,omitempty"`
	Turns   int      `json:"turns,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Handler upgrades HTTP requests and runs one conversation per connection.
type Handler struct {
	answers  driving.AnswerService
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithCheckOrigin overrides the same-origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = check
	}
}

// NewHandler creates a websocket handler.
func NewHandler(answers driving.AnswerService, opts ...Option) (*Handler, error) {
	if answers == nil {
		return nil, errors.New("ws: answer service is required")
	}
	h := &Handler{
		answers: answers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &session{conn: conn, answers: h.answers}
	s.run(ctx)
}

// session is one connection and its conversation.
type session struct {
	conn    *websocket.Conn
	answers driving.AnswerService
	history domain.ConversationHistory
}

func (s *session) run(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	requests := make(chan Request)
	go s.read(ctx, requests)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := s.write(s.handle(ctx, req)); err != nil {
				logger.Debug("websocket write failed: %v", err)
				return
			}
		}
	}
}

// read decodes frames until the connection fails. Frames that are not
// valid JSON arrive as requests with an empty type.
func (s *session) read(ctx context.Context, out chan<- Request) {
	defer close(out)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed: %v", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			req = Request{}
		}

		select {
		case out <- req:
		case <-ctx.Done():
			return
		}
	}
}

// handle runs one request against the session history.
func (s *session) handle(ctx context.Context, req Request) Response {
	switch req.Type {
	case TypePing:
		return Response{Type: TypePong}
	case TypeReset:
		s.history = nil
		return Response{Type: TypeReset}
	case TypeAsk:
		if strings.TrimSpace(req.Question) == "" {
			return Response{Type: TypeError, Error: "question is required"}
		}
		turn, err := s.answers.AnswerTurn(ctx, req.Question, s.history, req.TopK)
		if err != nil {
			return Response{Type: TypeError, Error: err.Error()}
		}
		s.history = turn.History
		return Response{
			Type:    TypeAnswer,
			Answer:  turn.Answer,
			Sources: toSources(turn.Context),
			Failed:  turn.Failed(),
			Turns:   len(s.history) / 2,
		}
	case "":
		return Response{Type: TypeError, Error: "malformed request"}
	default:
		return Response{Type: TypeError, Error: "unknown message type " + req.Type}
	}
}

func (s *session) write(resp Response) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(resp)
}

func toSources(records []domain.RetrievedRecord) []Source {
	out := make([]Source, 0, len(records))
	for _, r := range records {
		out = append(out, Source{Document: r.DocumentName, Score: r.Score, Content: r.Content})
	}
	return out
}
