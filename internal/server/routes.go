package server

import (
	"github.com/nfrund/charroom/internal/domain"
	"github.com/nfrund/charroom/internal/handlers"
	"github.com/nfrund/charroom/internal/middleware"
	"github.com/nfrund/charroom/internal/modelconfig"
	"github.com/samber/do/v2"
)

// RegisterRoutes sets up the REST API. Module routes are mounted at boot.
func (s *Server) RegisterRoutes() {
	i := s.App.Injector
	messages := do.MustInvoke[domain.MessageRepository](i)
	characters := do.MustInvoke[domain.CharacterRepository](i)
	rooms := do.MustInvoke[domain.RoomRepository](i)

	characterHandler := handlers.NewCharacterHandler(characters)
	roomHandler := handlers.NewRoomHandler(rooms, messages)
	modelHandler := handlers.NewModelHandler(do.MustInvoke[*modelconfig.Store](i))
	healthHandler := handlers.NewHealthHandler(do.MustInvoke[map[string]handlers.HealthChecker](i))
	rateLimiter := middleware.RateLimiter(2, 20)

	s.E.GET("/healthz", healthHandler.Health)

	api := s.E.Group("/api", middleware.BearerAuth(s.Cfg.GetAPIToken()))

	api.GET("/characters", characterHandler.List)
	api.POST("/characters", characterHandler.Create, rateLimiter)
	api.GET("/characters/:id", characterHandler.Get)

	api.GET("/rooms", roomHandler.List)
	api.POST("/rooms", roomHandler.Create, rateLimiter)
	api.GET("/rooms/:id", roomHandler.Get)
	api.GET("/rooms/:id/messages", roomHandler.Messages)

	api.GET("/models", modelHandler.List)
	api.PUT("/models/:name", modelHandler.Put, rateLimiter)
	api.DELETE("/models/:name", modelHandler.Delete, rateLimiter)
}
