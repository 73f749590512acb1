package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/mentalmate/mindbot/backend/internal/service/chat"
	"github.com/mentalmate/mindbot/backend/internal/service/pipeline"
	"github.com/mentalmate/mindbot/backend/pkg/logger"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	feedBuffer   = 64
)

// Handler WebSocket聊天通道与管理台实时推送
type Handler struct {
	chatSvc  *chatService.Service
	pipeline *pipeline.Pipeline
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// New 创建WebSocket处理器
func New(chatSvc *chatService.Service, pipe *pipeline.Pipeline, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		chatSvc:  chatSvc,
		pipeline: pipe,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With("component", "live"),
	}
}

// RegisterRoutes 注册用户聊天WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat/{sessionID}", h.handleChatSocket)
}

// RegisterAdminRoutes 注册管理台实时推送路由，调用方负责挂载鉴权中间件
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/ws", h.handleAdminFeed)
}

type inboundMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// socket serializes writes; gorilla connections allow one concurrent writer.
type socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *socket) send(msgType, sessionID string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(outgoingMessage{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *socket) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleChatSocket 用户端聊天通道：接收消息，推送增量回复与会话事件
func (h *Handler) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondErr(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sock := &socket{conn: conn}
	events, unsubscribe := h.chatSvc.Subscribe(feedBuffer)
	defer unsubscribe()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, sock)
	}()
	go func() {
		defer wg.Done()
		h.forward(ctx, sock, events, sessionID)
	}()

	h.log.Info("chat socket opened", "session_id", sessionID)
	if err := sock.send("connected", sessionID, nil); err != nil {
		return
	}

	h.readLoop(conn, func(msg inboundMessage) {
		switch msg.Type {
		case "message":
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.submit(ctx, sock, sessionID, msg)
			}()
		case "cancel":
			h.pipeline.Cancel(sessionID)
		default:
			_ = sock.send("error", sessionID, map[string]string{"error": "unknown message type"})
		}
	})
	h.log.Info("chat socket closed", "session_id", sessionID)
}

func (h *Handler) submit(ctx context.Context, sock *socket, sessionID string, msg inboundMessage) {
	result, err := h.pipeline.SubmitUserMessage(ctx, sessionID, msg.Content,
		pipeline.WithLanguage(msg.Language),
		pipeline.WithDeltaSink(func(delta string) {
			_ = sock.send("delta", sessionID, map[string]string{"content": delta})
		}),
	)
	if err != nil {
		_ = sock.send("error", sessionID, map[string]string{"error": err.Error()})
		return
	}
	_ = sock.send("result", sessionID, result)
}

// handleAdminFeed 管理台实时推送全部会话事件
func (h *Handler) handleAdminFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sock := &socket{conn: conn}
	events, unsubscribe := h.chatSvc.Subscribe(feedBuffer)
	defer unsubscribe()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, sock)
	}()
	go func() {
		defer wg.Done()
		h.forward(ctx, sock, events, "")
	}()

	if err := sock.send("connected", "", map[string]int{"sessions": len(h.chatSvc.ListSessions(ctx))}); err != nil {
		return
	}
	h.readLoop(conn, func(inboundMessage) {})
}

// forward pushes store events to the socket; an empty sessionID forwards everything.
func (h *Handler) forward(ctx context.Context, sock *socket, events <-chan chatService.Event, sessionID string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if sessionID != "" && ev.SessionID != sessionID {
				continue
			}
			if err := sock.send("event", ev.SessionID, ev); err != nil {
				return
			}
		}
	}
}

// readLoop dispatches inbound frames until the peer goes away.
func (h *Handler) readLoop(conn *websocket.Conn, handle func(inboundMessage)) {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Debug("invalid websocket frame", "error", err)
			continue
		}
		handle(msg)
	}
}

func (h *Handler) pingLoop(ctx context.Context, sock *socket) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sock.ping(); err != nil {
				return
			}
		}
	}
}
