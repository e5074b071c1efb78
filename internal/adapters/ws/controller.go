// Package ws owns the WebSocket boundary: upgrade, read/write pumps and
// the handoff of decoded frames into the session.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/app"
	"github.com/dkeye/Plaza/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	cfg  *config.Config
	deps app.Deps
}

func NewController(cfg *config.Config, deps app.Deps) *Controller {
	return &Controller{cfg: cfg, deps: deps}
}

// HandleConnect upgrades the request and starts one session with its
// own reader and writer. The session stays unbound until the client's
// join frame arrives.
func (ctl *Controller) HandleConnect(ctx context.Context, c *gin.Context) {
	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}

	conn := newConn(wsc, ctl.cfg.SendBuffer)
	sess := app.NewSession(conn, ctl.deps)
	log.Info().Str("module", "adapters.ws").Str("sid", string(sess.ID())).Str("remote", c.Request.RemoteAddr).Msg("new connection")

	go conn.writePump(ctl.cfg.PingPeriod)
	go ctl.readPump(ctx, sess, conn)
}

func (ctl *Controller) readPump(ctx context.Context, sess *app.Session, c *Conn) {
	defer func() {
		sess.Destroy()
		log.Info().Str("module", "adapters.ws").Str("sid", string(sess.ID())).Msg("connection closed")
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.ws.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("module", "adapters.ws").Str("sid", string(sess.ID())).Msg("read error")
			}
			return
		}
		sess.HandleFrame(ctx, data)
	}
}
