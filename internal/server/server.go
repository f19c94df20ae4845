// Package server exposes the relay over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/petasbytes/advisor-relay/internal/relay"
	"github.com/petasbytes/advisor-relay/internal/store"
	"github.com/petasbytes/advisor-relay/internal/web"
	"github.com/petasbytes/advisor-relay/memory"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "relay_session"
)

// Chatter runs one chat exchange.
type Chatter interface {
	Chat(ctx context.Context, message string) (relay.Outcome, error)
}

// MessageReader reads the message log for the admin and health endpoints.
type MessageReader interface {
	ListAll(ctx context.Context) ([]store.Record, error)
	Count(ctx context.Context) (int, error)
}

type Server struct {
	chat     Chatter
	messages MessageReader
	logger   *log.Logger
}

func New(chat Chatter, messages MessageReader, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{chat: chat, messages: messages, logger: logger.WithPrefix("http")}
}

// Router builds the gin engine serving every route.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), sessionMiddleware())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.Index)
	r.GET("/admin", s.Admin)
	r.POST("/chat", s.Chat)
	r.GET("/healthz", s.Health)
	r.StaticFS("/static", http.FS(web.Static()))
	return r, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

// Index handles GET /
func (s *Server) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, web.IndexPage, nil)
}

// Chat handles POST /chat
func (s *Server) Chat(ctx *gin.Context) {
	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}

	out, err := s.chat.Chat(ctx.Request.Context(), req.Message)
	if errors.Is(err, relay.ErrEmptyMessage) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if out.PersistFailures > 0 {
		ctx.Header("X-Persist-Failures", fmt.Sprint(out.PersistFailures))
	}
	ctx.JSON(http.StatusOK, gin.H{"response": out.Reply})
}

// Admin handles GET /admin
func (s *Server) Admin(ctx *gin.Context) {
	records, err := s.messages.ListAll(ctx.Request.Context())
	if err != nil {
		s.logger.Error("admin: list messages", "err", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error accessing admin panel: %v", err)})
		return
	}
	ctx.HTML(http.StatusOK, web.AdminPage, gin.H{"Messages": records})
}

// Health handles GET /healthz
func (s *Server) Health(ctx *gin.Context) {
	n, err := s.messages.Count(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "messages": n})
}

// sessionMiddleware attaches the caller's session ID to the request context.
func sessionMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(SessionHeader)
		if id == "" {
			if c, err := ctx.Cookie(SessionCookie); err == nil {
				id = c
			}
		}
		id = memory.NormalizeSession(id)
		ctx.Request = ctx.Request.WithContext(memory.WithSession(ctx.Request.Context(), id))
		ctx.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		s.logger.Info("request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
