package screens

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/profile"
	"takeapp/internal/app/session"
	"takeapp/internal/pkg/errs"
	"takeapp/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the browser.
	// Large enough for an avatar selection; everything else is tiny.
	maxFrameSize = 8 << 20
)

// Frame types exchanged with the browser.
const (
	FrameMount    = "mount"
	FrameEvent    = "event"
	FrameRender   = "render"
	FrameNavigate = "navigate"
	FrameError    = "error"
)

// inboundFrame is one message from the browser: either a route visit or a
// user interaction on the mounted screen.
type inboundFrame struct {
	Type  string      `json:"type"`
	Path  string      `json:"path,omitempty"`
	Event *eventFrame `json:"event,omitempty"`
}

type eventFrame struct {
	Name     string `json:"name"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileData []byte `json:"fileData,omitempty"`
}

// outboundFrame is one message to the browser: a render snapshot, a
// navigation instruction, or an error.
type outboundFrame struct {
	Type  string            `json:"type"`
	Path  string            `json:"path,omitempty"`
	Mode  string            `json:"mode,omitempty"`
	State map[string]any    `json:"state,omitempty"`
	Error *errs.CustomError `json:"error,omitempty"`
}

// HostConfig carries the shared collaborators a Host hands to the screens
// it mounts.
type HostConfig struct {
	Profiles    profile.Store
	Objects     profile.ObjectStore
	GraceWindow time.Duration
	NavDelay    time.Duration
}

// Host drives one browser connection. It owns the connection's session
// oracle and navigation history, mounts a screen controller per route
// visit, relays events to it, and pushes render and navigation frames back.
type Host struct {
	conn   *websocket.Conn
	oracle *session.ConnectionOracle
	cfg    HostConfig

	ctx    context.Context
	cancel context.CancelFunc

	history *nav.History

	// a buffered channel used to queue frames waiting to be sent.
	send chan []byte

	logger zerolog.Logger

	mu     sync.Mutex
	screen Screen
	closed bool
}

// NewHost constructs a Host for an upgraded connection. The oracle is owned
// by the host from here on and is closed when the connection ends.
func NewHost(conn *websocket.Conn, oracle *session.ConnectionOracle, cfg HostConfig, userIDHint string) *Host {
	ctx, cancel := context.WithCancel(context.Background())

	hostLogger := logx.Logger().With().
		Str("user_id_hint", userIDHint).
		Logger()

	return &Host{
		conn:    conn,
		oracle:  oracle,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		history: nav.NewHistory(),
		send:    make(chan []byte, 64),
		logger:  hostLogger,
	}
}

// History exposes the connection's navigation record.
func (h *Host) History() *nav.History {
	return h.history
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame parsing, and performs cleanup upon
// connection closure.
func (h *Host) ReadPump() {
	defer h.cleanupOnDisconnect()

	h.conn.SetReadLimit(maxFrameSize)

	if err := h.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	h.conn.SetPongHandler(func(string) error {
		return h.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		h.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the host's
// ReadPump terminates.
func (h *Host) cleanupOnDisconnect() {
	h.logger.Info().Msg("Connection cleanup starting.")

	h.mu.Lock()
	h.closed = true
	screen := h.screen
	h.screen = nil
	h.mu.Unlock()

	if screen != nil {
		screen.Unmount()
	}

	h.cancel()
	h.oracle.Close()
	close(h.send)

	if err := h.conn.Close(); err != nil {
		h.logger.Error().Err(err).Msg("Connection close error")
	}
}

// processInboundFrame handles raw byte frames received from the browser.
func (h *Host) processInboundFrame(frameBytes []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		h.logger.Warn().Err(err).Msg("Browser sent invalid JSON")
		return
	}

	switch frame.Type {
	case FrameMount:
		h.mountScreen(frame.Path, true)

	case FrameEvent:
		h.handleEvent(frame.Event)

	default:
		h.logger.Warn().Str("frame_type", frame.Type).Msg("Browser sent unsupported frame type")
	}
}

// mountScreen swaps the current screen controller for the one serving path.
// Direct visits record a push entry; navigator-driven swaps record through
// the navigator before reaching here.
func (h *Host) mountScreen(path string, recordHistory bool) {
	deps := Deps{
		Oracle:      h.oracle,
		Profiles:    h.cfg.Profiles,
		Objects:     h.cfg.Objects,
		GraceWindow: h.cfg.GraceWindow,
		NavDelay:    h.cfg.NavDelay,
		Navigator: &nav.FuncNavigator{
			ReplaceFunc: func(p string) { h.navigate(nav.ModeReplace, p) },
			PushFunc:    func(p string) { h.navigate(nav.ModePush, p) },
		},
		Notify: h.renderCurrent,
	}

	screen, customErr := New(path, deps)
	if customErr != nil {
		h.logger.Warn().Str("path", path).Msg("Browser requested unknown screen")
		h.enqueueFrame(outboundFrame{Type: FrameError, Error: customErr})
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	previous := h.screen
	h.screen = screen
	h.mu.Unlock()

	if previous != nil {
		previous.Unmount()
	}

	if recordHistory {
		h.history.Push(path)
	}

	screen.Mount(h.ctx)
	h.renderCurrent()
}

// navigate records the transition, tells the browser, and mounts the
// destination screen. Screens reach it through their Navigator.
func (h *Host) navigate(mode nav.Mode, path string) {
	switch mode {
	case nav.ModeReplace:
		h.history.Replace(path)
	default:
		h.history.Push(path)
	}

	h.enqueueFrame(outboundFrame{Type: FrameNavigate, Mode: string(mode), Path: path})
	h.mountScreen(path, false)
}

// handleEvent relays one user interaction to the mounted screen.
func (h *Host) handleEvent(ev *eventFrame) {
	if ev == nil {
		h.logger.Warn().Msg("Browser sent event frame without event")
		return
	}

	h.mu.Lock()
	screen := h.screen
	h.mu.Unlock()

	if screen == nil {
		h.logger.Warn().Str("event", ev.Name).Msg("Browser sent event with no screen mounted")
		return
	}

	screen.HandleEvent(h.ctx, Event{
		Name:     ev.Name,
		Field:    ev.Field,
		Value:    ev.Value,
		FileName: ev.FileName,
		FileData: ev.FileData,
	})
}

// renderCurrent pulls a render snapshot from the mounted screen and pushes
// it to the browser. Screens trigger it via Deps.Notify after every state
// change.
func (h *Host) renderCurrent() {
	h.mu.Lock()
	screen := h.screen
	h.mu.Unlock()

	if screen == nil {
		return
	}

	h.enqueueFrame(outboundFrame{
		Type:  FrameRender,
		Path:  screen.Path(),
		State: screen.Render(),
	})
}

// enqueueFrame marshals a frame and queues it for the write pump. Frames for
// a closed connection are dropped.
func (h *Host) enqueueFrame(frame outboundFrame) {
	frameBytes, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Str("frame_type", frame.Type).Msg("Failed to marshal outbound frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	select {
	case h.send <- frameBytes:
	default:
		h.logger.Warn().Str("frame_type", frame.Type).Msg("Send queue full, dropping frame")
	}
}

// WritePump handles writing frames from the Host.send channel to the
// WebSocket connection.
func (h *Host) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := h.conn.Close(); err != nil {
			h.logger.Error().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frameBytes, ok := <-h.send:
			if !h.writeQueuedFrame(frameBytes, ok) {
				return
			}

		case <-ticker.C:
			if !h.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one queued frame; a false return stops the pump.
func (h *Host) writeQueuedFrame(frameBytes []byte, ok bool) bool {
	if err := h.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		// the send channel was closed during cleanup
		if err := h.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to write close message")
		}
		return false
	}

	if err := h.conn.WriteMessage(websocket.TextMessage, frameBytes); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write frame")
		return false
	}

	return true
}

// writePingMessage sends a heartbeat; a false return stops the pump.
func (h *Host) writePingMessage() bool {
	if err := h.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to set write deadline for ping")
		return false
	}

	if err := h.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write ping message")
		return false
	}

	return true
}
