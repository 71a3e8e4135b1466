package server

import (
	"context"
	"net/http"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/content"
	"sketchparty/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg      config.Config
	registry *game.Registry
	hub      *hub
}

// New builds the gateway and the registry it fronts. Extra options are
// applied after the gateway's own notifier and remove hook.
func New(cfg config.Config, provider content.Provider, opts ...game.Option) *Server {
	h := newHub()
	base := []game.Option{
		game.WithNotifier(h),
		game.WithRemoveHook(h.DropGroup),
		game.WithForgetHook(h.Forget),
	}
	return &Server{
		cfg:      cfg,
		hub:      h,
		registry: game.NewRegistry(cfg.RoomSettings(), provider, append(base, opts...)...),
	}
}

func (s *Server) Registry() *game.Registry {
	return s.registry
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/rooms/:code", s.handleRoomInfo)
	router.GET("/ws", s.handleWebsocket)
	return router
}

// Run sweeps abandoned rooms until ctx ends, then closes every room.
func (s *Server) Run(ctx context.Context) {
	s.registry.Run(ctx)
	s.registry.Close()
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": s.registry.Len()})
}

type roomURI struct {
	Code string `uri:"code" binding:"required,len=6,alphanum"`
}

type roomSummary struct {
	Code         string    `json:"code"`
	Mode         game.Mode `json:"mode"`
	Phase        string    `json:"phase"`
	Participants int       `json:"participants"`
}

func (s *Server) handleRoomInfo(c *gin.Context) {
	var req roomURI
	if !bindURI(c, &req) {
		return
	}
	room, ok := s.registry.Lookup(req.Code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, roomSummary{
		Code:         room.Code(),
		Mode:         room.Mode(),
		Phase:        room.Phase(),
		Participants: len(room.ParticipantIDs()),
	})
}

func bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		c.Status(http.StatusNotFound)
		return false
	}
	return true
}
