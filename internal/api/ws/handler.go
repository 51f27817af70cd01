package ws

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/shared/id"
	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

const writeTimeout = 10 * time.Second

// DefaultInterval applies when NewHandler is given a non-positive interval.
const DefaultInterval = 5 * time.Second

// failedETag marks a position whose last render failed. Real ETags are
// quoted so they never collide with it.
const failedETag = "failed"

// Message is the frame exchanged in both directions
type Message struct {
	Type      string `json:"type"`
	Position  string `json:"position,omitempty"`
	HTML      string `json:"html,omitempty"`
	ETag      string `json:"etag,omitempty"`
	Message   string `json:"message,omitempty"`
	Session   string `json:"session,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Fragments renders a position. *view.Engine satisfies it.
type Fragments interface {
	Fragment(ctx context.Context, position string) (template.HTML, error)
}

// Handler manages WebSocket connections
type Handler struct {
	fragments Fragments
	interval  time.Duration
	logger    *zap.Logger
	hasher    *utils.Hasher
	upgrader  websocket.Upgrader
}

// NewHandler creates a handler that re-renders subscriptions every
// interval.
func NewHandler(fragments Fragments, interval time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Handler{
		fragments: fragments,
		interval:  interval,
		logger:    logger,
		hasher:    utils.DefaultHasher(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Fragments are public, like the CORS policy
			},
		},
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Grants attached by middleware stay on the request context
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sessionID := id.NewRequestID()
	s := &session{
		handler: h,
		conn:    conn,
		ctx:     ctx,
		logger:  h.logger.With(zap.String("session", sessionID.String())),
		etags:   make(map[string]string),
	}
	s.logger.Debug("Stream session opened", zap.String("remote", c.ClientIP()))
	s.send(Message{Type: "system", Message: "connected", Session: sessionID.String()})

	go s.poll()

	// Listen for messages
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "subscribe":
			if err := utils.ValidatePosition(msg.Position); err != nil {
				s.sendError(msg.Position, err.Error())
				continue
			}
			s.subscribe(msg.Position)
		case "unsubscribe":
			s.unsubscribe(msg.Position)
		case "ping":
			s.send(Message{Type: "pong"})
		default:
			s.sendError("", "unknown message type")
		}
	}
}

// session is one connection's subscriptions
type session struct {
	handler *Handler
	conn    *websocket.Conn
	ctx     context.Context
	logger  *zap.Logger

	writeMu sync.Mutex

	mu    sync.Mutex
	etags map[string]string // subscribed position -> last ETag sent
}

func (s *session) subscribe(position string) {
	s.mu.Lock()
	s.etags[position] = ""
	s.mu.Unlock()
	s.push(position)
}

func (s *session) unsubscribe(position string) {
	s.mu.Lock()
	delete(s.etags, position)
	s.mu.Unlock()
}

// poll re-renders every subscription each interval until the connection
// ends.
func (s *session) poll() {
	ticker := time.NewTicker(s.handler.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			positions := make([]string, 0, len(s.etags))
			for p := range s.etags {
				positions = append(positions, p)
			}
			s.mu.Unlock()

			for _, p := range positions {
				s.push(p)
			}
		}
	}
}

// push renders position and sends it when its ETag changed since the last
// send.
func (s *session) push(position string) {
	html, err := s.handler.fragments.Fragment(s.ctx, position)
	if err != nil {
		// Report a failing position once until it recovers
		if !s.mark(position, failedETag) {
			return
		}
		s.logger.Warn("Stream render failed",
			zap.String("position", position),
			zap.Error(err),
		)
		s.sendError(position, err.Error())
		return
	}

	etag := s.handler.hasher.ETag(string(html))
	if s.mark(position, etag) {
		s.send(Message{Type: "fragment", Position: position, HTML: string(html), ETag: etag})
	}
}

// mark records etag as the last sent for position. It reports false when
// position is no longer subscribed or etag is unchanged.
func (s *session) mark(position, etag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, subscribed := s.etags[position]
	if !subscribed || prev == etag {
		return false
	}
	s.etags[position] = etag
	return true
}

func (s *session) send(msg Message) {
	msg.Timestamp = time.Now().Unix()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("WebSocket write failed", zap.Error(err))
	}
}

func (s *session) sendError(position, message string) {
	s.send(Message{Type: "error", Position: position, Message: message})
}
