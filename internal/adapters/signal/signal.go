package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/app/orch"
	"github.com/mentorhub/signaling/internal/auth"
	"github.com/mentorhub/signaling/internal/config"
	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch        *orch.Orchestrator
	Verifier    *auth.Verifier
	JoinLimiter *JoinLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewSignalWSController(o *orch.Orchestrator, verifier *auth.Verifier, cfg *config.Config) *SignalWSController {
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &SignalWSController{
		Orch:        o,
		Verifier:    verifier,
		JoinLimiter: NewJoinLimiter(cfg.RateLimit.JoinLimit, cfg.RateLimit.JoinInterval),
		readLimit:   cfg.ReadLimit,
		pingPeriod:  pingPeriod,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// bearerToken pulls the credential from the query string or the
// Authorization header.
func bearerToken(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// HandleSignal authenticates and upgrades one signaling connection.
// An invalid credential is rejected before the upgrade: no connection, no
// events.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	uid, err := ctl.Verifier.Verify(bearerToken(c))
	if err != nil {
		log.Warn().Str("module", "signal").Str("remote", c.ClientIP()).Msg("rejected connection: bad credential")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	cid := core.ConnID(uuid.NewString())
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("user", string(uid)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(cid, uid, conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, uid, conn, cancel)
}

// connIdentity is the immutable authenticated identity threaded through
// every handler call; nothing re-reads it off the socket.
type connIdentity struct {
	ConnID core.ConnID
	UserID domain.UserID
}
