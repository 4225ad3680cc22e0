package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"literature-lite/card"
	"literature-lite/internal/auth"
	"literature-lite/internal/codec"
	"literature-lite/internal/log"
	"literature-lite/internal/notify"
	"literature-lite/internal/table"
	"literature-lite/literature"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 65536
	sendBuffer = 256

	// reply to a command frame
	KindResult = "result"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Games resolves the table behind a game id.
type Games interface {
	Get(ctx context.Context, gameID string) (*table.Table, error)
}

type frame struct {
	msgType int
	data    []byte
}

// Connection is one player socket attached to one game.
type Connection struct {
	ID       string
	Player   literature.Identity
	GameID   string
	Table    *table.Table
	Format   codec.Format
	Conn     *websocket.Conn
	Send     chan frame
	Gateway  *Gateway
	LastPing time.Time

	sendMu sync.Mutex
	closed bool
}

// Gateway manages player sockets and delivers notifications to them. It is
// a notify.Broadcaster.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	byGame      map[string]map[string]*Connection // gameID -> connID -> conn
	nextConnID  uint64

	games  Games
	issuer *auth.Issuer
}

func New(issuer *auth.Issuer) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		byGame:      make(map[string]map[string]*Connection),
		issuer:      issuer,
	}
}

// SetGames wires the registry. The lobby needs the gateway as its
// broadcaster first, so this cannot be a constructor argument.
func (g *Gateway) SetGames(games Games) {
	g.mu.Lock()
	g.games = games
	g.mu.Unlock()
}

// HandleWebSocket upgrades /ws?game=<id>&token=<jwt>[&format=json].
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	}
	player, err := g.issuer.Parse(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	g.mu.RLock()
	games := g.games
	g.mu.RUnlock()
	if games == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	gameID := r.URL.Query().Get("game")
	t, err := games.Get(r.Context(), gameID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	view, err := t.View(player.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	format := codec.FormatBinary
	if r.URL.Query().Get("format") == "json" {
		format = codec.FormatJSON
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:       fmt.Sprintf("conn_%d", g.nextConnID),
		Player:   player,
		GameID:   t.ID,
		Table:    t,
		Format:   format,
		Conn:     conn,
		Send:     make(chan frame, sendBuffer),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[c.ID] = c
	if g.byGame[t.ID] == nil {
		g.byGame[t.ID] = make(map[string]*Connection)
	}
	g.byGame[t.ID][c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Info("[Gateway] %s connected to game %s as %s, total: %d", c.ID, t.ID, player.ID, total)

	c.send(string(notify.KindPlayerView), view)
	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("[Gateway] Read error on %s: %v", c.ID, err)
			}
			return
		}
		format := codec.FormatBinary
		if messageType == websocket.TextMessage {
			format = codec.FormatJSON
		}
		c.handleMessage(message, format)
	}
}

type commandResult struct {
	ReqID string                `json:"reqId,omitempty"`
	Op    codec.Op              `json:"op"`
	OK    bool                  `json:"ok"`
	Kind  string                `json:"kind,omitempty"`
	Error string                `json:"error,omitempty"`
	Move  *literature.Move      `json:"move,omitempty"`
	View  *literature.PlayerView `json:"view,omitempty"`
	Bots  []string              `json:"bots,omitempty"`
}

func (c *Connection) handleMessage(data []byte, format codec.Format) {
	cmd, err := codec.DecodeCommand(data, format)
	if err != nil {
		log.Debug("[Gateway] bad frame from %s: %v", c.ID, err)
		c.send(KindResult, commandResult{Error: "invalid message format", Kind: "invalid_param"})
		return
	}
	log.Debug("[Gateway] %s from %s in game %s", cmd.Op, c.Player.ID, c.GameID)

	res := commandResult{ReqID: cmd.ReqID, Op: cmd.Op}
	if err := c.dispatch(cmd, &res); err != nil {
		res.Error = err.Error()
		res.Kind = errorKind(err)
	} else {
		res.OK = true
	}
	c.send(KindResult, res)
}

func (c *Connection) dispatch(cmd codec.Command, res *commandResult) error {
	t, me := c.Table, c.Player.ID
	switch cmd.Op {
	case codec.OpView:
		view, err := t.View(me)
		res.View = &view
		return err
	case codec.OpBots:
		added, err := t.AddBots(me)
		res.Bots = added
		return err
	case codec.OpTeams:
		_, err := t.CreateTeams(me, cmd.Teams)
		return err
	case codec.OpStart:
		_, err := t.Start(me)
		return err
	case codec.OpAsk:
		cc, err := card.Parse(cmd.Card)
		if err != nil {
			return err
		}
		move, err := t.Ask(me, cmd.Target, cc)
		res.Move = &move
		return err
	case codec.OpClaim:
		owners, err := card.ParseOwners(cmd.Claim)
		if err != nil {
			return err
		}
		move, err := t.Claim(me, owners)
		res.Move = &move
		return err
	case codec.OpTransfer:
		move, err := t.Transfer(me, cmd.Target)
		res.Move = &move
		return err
	}
	return fmt.Errorf("unknown op %q", cmd.Op)
}

func errorKind(err error) string {
	if k := literature.KindOf(err); k != 0 {
		return k.String()
	}
	if errors.Is(err, table.ErrTableClosed) {
		return "unavailable"
	}
	return "invalid_param"
}

// send encodes a frame in the connection's format and queues it. Slow
// clients lose frames instead of stalling the game.
func (c *Connection) send(kind string, payload any) {
	// direct replies are not part of the game's notification sequence
	env := codec.NewEnvelope(c.GameID, 0, kind, payload)
	data, err := codec.Encode(env, c.Format)
	if err != nil {
		log.Error("[Gateway] encode %s for %s: %v", kind, c.ID, err)
		return
	}
	c.enqueue(frame{msgType: messageType(c.Format), data: data})
}

func (c *Connection) enqueue(f frame) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- f:
	default:
		log.Warn("[Gateway] dropping frame for slow client %s", c.ID)
	}
}

func messageType(f codec.Format) int {
	if f == codec.FormatJSON {
		return websocket.TextMessage
	}
	return websocket.BinaryMessage
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(f.msgType, f.data); err != nil {
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

func (c *Connection) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if conns := g.byGame[c.GameID]; conns != nil {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(g.byGame, c.GameID)
		}
	}
	log.Info("[Gateway] %s disconnected, total: %d", c.ID, len(g.connections))
}

// Publish delivers a game notification to the sockets of that game.
// Private notifications only reach their recipients.
func (g *Gateway) Publish(_ context.Context, n notify.Notification) error {
	g.mu.RLock()
	var targets []*Connection
	for _, c := range g.byGame[n.GameID] {
		if n.Private() && !contains(n.Recipients, c.Player.ID) {
			continue
		}
		targets = append(targets, c)
	}
	g.mu.RUnlock()
	if len(targets) == 0 {
		return nil
	}

	encoded := make(map[codec.Format][]byte, 2)
	env := codec.NewEnvelope(n.GameID, n.Seq, string(n.Kind), n.Payload)
	for _, c := range targets {
		data, ok := encoded[c.Format]
		if !ok {
			var err error
			data, err = codec.Encode(env, c.Format)
			if err != nil {
				return err
			}
			encoded[c.Format] = data
		}
		c.enqueue(frame{msgType: messageType(c.Format), data: data})
	}
	return nil
}

// Connections counts open sockets for a game.
func (g *Gateway) Connections(gameID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byGame[gameID])
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
