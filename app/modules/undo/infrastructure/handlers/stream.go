package undohandlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// SlotFrame is one websocket message describing the scope's undo slot.
type SlotFrame struct {
	Reason               string            `json:"reason"`
	Entry                *undodomain.Entry `json:"entry"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	AppliedID            string            `json:"applied_id,omitempty"`
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	u := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(allowedOrigins) == 0 {
		return u
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	u.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		parsed, err := url.Parse(origin)
		return err == nil && parsed.Host == r.Host
	}
	return u
}

// HandleStream upgrades to a websocket and pushes a SlotFrame for the current slot and every
// change after it. A client that cannot keep up is disconnected.
func (h *UndoHandlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", attr.Scope(scope.String()), attr.Error(err))
		return
	}

	send := make(chan []byte, sendBuffer)
	overflow := make(chan struct{})
	closed := false

	gate := h.service.Gate()
	unsubscribe := h.service.Subscribe(scope, func(c undoservice.Change) {
		if closed {
			return
		}
		frame := SlotFrame{Reason: string(c.Reason), Entry: c.Entry}
		if c.Entry != nil {
			frame.RequiresConfirmation = gate.RequiresConfirmation(*c.Entry)
		}
		if c.Applied != nil {
			frame.AppliedID = c.Applied.ID.String()
		}
		data, err := json.Marshal(frame)
		if err != nil {
			return
		}
		select {
		case send <- data:
		default:
			closed = true
			close(overflow)
		}
	})

	h.logger.DebugContext(r.Context(), "Undo stream opened", attr.Scope(scope.String()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn)
	}()

	writePump(conn, send, overflow, done)
	unsubscribe()
	conn.Close()
	<-done

	h.logger.DebugContext(r.Context(), "Undo stream closed", attr.Scope(scope.String()))
}

// readPump discards client messages and returns when the connection fails.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte, overflow, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-overflow:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow consumer"))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
