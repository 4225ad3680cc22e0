package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"literature-lite/card"
	"literature-lite/internal/auth"
	"literature-lite/internal/log"
	"literature-lite/internal/table"
	"literature-lite/literature"
)

// Games is the registry the handlers need.
type Games interface {
	Create(ctx context.Context, creator literature.Identity, players int) (*table.Table, error)
	Get(ctx context.Context, gameID string) (*table.Table, error)
	Join(ctx context.Context, code string, id literature.Identity) (*table.Table, literature.PlayerView, error)
}

type Handler struct {
	games  Games
	issuer *auth.Issuer
}

const identityKey = "identity"

// NewRouter builds the gin engine. extra lets the caller mount more routes
// (the websocket endpoint) on the same engine.
func NewRouter(games Games, issuer *auth.Issuer, extra ...func(*gin.Engine)) *gin.Engine {
	h := &Handler{games: games, issuer: issuer}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) { c.String(200, "ok") })
	r.POST("/auth/guest", h.guest)

	g := r.Group("/games", h.authenticate)
	g.POST("", h.createGame)
	g.POST("/join", h.joinGame)
	g.GET("/:id/view", h.view)
	g.POST("/:id/bots", h.addBots)
	g.POST("/:id/teams", h.createTeams)
	g.POST("/:id/start", h.start)
	g.POST("/:id/ask", h.ask)
	g.POST("/:id/claim", h.claim)
	g.POST("/:id/transfer", h.transfer)

	for _, mount := range extra {
		mount(r)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("[HTTP] %s %s %d in %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		for _, e := range c.Errors {
			log.Error("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, e.Err)
		}
	}
}

func (h *Handler) authenticate(c *gin.Context) {
	id, err := h.issuer.Parse(c.GetHeader("Authorization"))
	if err != nil {
		unauthorized(c, "")
		return
	}
	c.Set(identityKey, id)
	c.Next()
}

func identity(c *gin.Context) literature.Identity {
	id, _ := c.Get(identityKey)
	out, _ := id.(literature.Identity)
	return out
}

type guestRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type guestResponse struct {
	Token    string              `json:"token"`
	Identity literature.Identity `json:"identity"`
}

// guest hands out a token for a fresh player id.
func (h *Handler) guest(c *gin.Context) {
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "name is required")
		return
	}
	id := literature.Identity{ID: "u-" + uuid.NewString()[:8], Name: name, Avatar: req.Avatar}
	token, err := h.issuer.Issue(id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, guestResponse{Token: token, Identity: id})
}

type createRequest struct {
	Players int `json:"players"`
}

type createResponse struct {
	GameID string                `json:"gameId"`
	Code   string                `json:"code"`
	View   literature.PlayerView `json:"view"`
}

func (h *Handler) createGame(c *gin.Context) {
	var req createRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	me := identity(c)
	t, err := h.games.Create(c.Request.Context(), me, req.Players)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := t.View(me.ID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, createResponse{GameID: t.ID, Code: t.Code(), View: view})
}

type joinRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) joinGame(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	_, view, err := h.games.Join(c.Request.Context(), req.Code, identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, view)
}

func (h *Handler) table(c *gin.Context) (*table.Table, bool) {
	t, err := h.games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return t, true
}

func (h *Handler) view(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	view, err := t.View(identity(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, view)
}

func (h *Handler) addBots(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	added, err := t.AddBots(identity(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"players": added})
}

type teamsRequest struct {
	Teams map[string][]string `json:"teams"`
}

func (h *Handler) createTeams(c *gin.Context) {
	var req teamsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	t, ok := h.table(c)
	if !ok {
		return
	}
	view, err := t.CreateTeams(identity(c).ID, req.Teams)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, view)
}

func (h *Handler) start(c *gin.Context) {
	t, ok := h.table(c)
	if !ok {
		return
	}
	view, err := t.Start(identity(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, view)
}

type askRequest struct {
	Target string `json:"target" binding:"required"`
	Card   string `json:"card" binding:"required"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cc, err := card.Parse(req.Card)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	t, ok := h.table(c)
	if !ok {
		return
	}
	move, err := t.Ask(identity(c).ID, req.Target, cc)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, move)
}

type claimRequest struct {
	Claim map[string]string `json:"claim" binding:"required"`
}

func (h *Handler) claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	owners, err := card.ParseOwners(req.Claim)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	t, ok := h.table(c)
	if !ok {
		return
	}
	move, err := t.Claim(identity(c).ID, owners)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, move)
}

type transferRequest struct {
	Target string `json:"target" binding:"required"`
}

func (h *Handler) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	t, ok := h.table(c)
	if !ok {
		return
	}
	move, err := t.Transfer(identity(c).ID, req.Target)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, move)
}
