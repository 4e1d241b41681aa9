package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/palette"
	"github.com/rubiojr/cmdk/pkg/realtime"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsPongWait     = 2 * wsPingInterval
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// paletteConn is one websocket palette client. It is the session's
// navigator, opener and notifier: each of them becomes a message to the
// client, which performs the actual navigation.
type paletteConn struct {
	conn    *websocket.Conn
	session *palette.Session
	writeMu sync.Mutex
	logger  *log.Logger
}

func (c *paletteConn) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(msg)
}

func (c *paletteConn) Navigate(ctx context.Context, path, prefetchURL string) error {
	return c.send(ServerMessage{Type: "navigate", Target: path, Prefetch: prefetchURL})
}

func (c *paletteConn) Open(ctx context.Context, url string) error {
	return c.send(ServerMessage{Type: "open", Target: url})
}

func (c *paletteConn) ShowError(message string) {
	if err := c.send(ServerMessage{Type: "error", Message: message}); err != nil {
		c.logger.Debugf("sending error: %v", err)
	}
}

type analyticsLogger struct {
	logger *log.Logger
}

func (a analyticsLogger) QueryChanged(sessionID, query string, results int) {
	a.logger.With("session", sessionID, "query", query, "results", results).Infof("query changed")
}

// runQuery searches q and sends the report unless a newer query has
// replaced it meanwhile.
func (c *paletteConn) runQuery(ctx context.Context, q string) {
	report := c.session.SetQuery(ctx, q)
	if c.session.Query() != q || ctx.Err() != nil {
		return
	}
	err := c.send(ServerMessage{
		Type:          "report",
		Query:         q,
		Loading:       report.Loading,
		HasAnyResults: report.HasAnyResults,
		Results:       toResultResponses(c.session.View(report)),
	})
	if err != nil {
		c.logger.Debugf("sending report: %v", err)
	}
}

// HandlePaletteWS runs a palette session over a websocket.
//
// Client messages:
//
//	{"type":"query","query":"members"}
//	{"type":"select","index":0}
//
// Server messages have type init, report, navigate, open, error, reload
// or store.
func (s *Server) HandlePaletteWS(w http.ResponseWriter, r *http.Request) {
	sc := s.contextFrom(r.URL.Query())

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	session := palette.NewSession(s.cfg.Search, sc, s.cfg.Palette)
	defer session.Close()

	c := &paletteConn{
		conn:    ws,
		session: session,
		logger:  s.logger.With("session", session.ID()[:8]),
	}
	session.Navigator, session.Opener, session.Notifier = c, c, c
	session.Analytics = analyticsLogger{logger: log.ForService("analytics")}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := c.send(ServerMessage{Type: "init", Session: session.ID(), Sources: s.cfg.Registry.ListSources()}); err != nil {
		c.logger.Warnf("sending init: %v", err)
		return
	}

	if s.cfg.Hub != nil {
		id, events := s.cfg.Hub.Register()
		defer s.cfg.Hub.Unregister(id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.forwardEvents(ctx, events)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.keepAlive(ctx)
	}()

	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg ClientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warnf("reading message: %v", err)
			}
			cancel()
			return
		}

		switch msg.Type {
		case "query":
			wg.Add(1)
			go func(q string) {
				defer wg.Done()
				c.runQuery(ctx, q)
			}(msg.Query)
		case "select":
			sel, err := session.SelectIndex(ctx, msg.Index)
			if err != nil {
				c.ShowError(err.Error())
				continue
			}
			c.logger.Debugf("selected %s %s", sel.Kind, sel.Target)
		default:
			c.ShowError("unknown message type " + msg.Type)
		}
	}
}

// forwardEvents relays hub events. A reload re-runs the current query.
func (c *paletteConn) forwardEvents(ctx context.Context, events <-chan realtime.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			switch e.Type {
			case realtime.TypeReload:
				_ = c.send(ServerMessage{Type: "reload", Source: e.Source})
				if q := c.session.Query(); q != "" {
					c.runQuery(ctx, q)
				}
			case realtime.TypeStore:
				_ = c.send(ServerMessage{Type: "store", Key: e.Key, Value: e.Value})
			}
		}
	}
}

func (c *paletteConn) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
