package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/givecycle/givecycle/internal/interface/http"
	"github.com/givecycle/givecycle/internal/interface/middleware"
)

// UserModule wires user CRUD routes. Registration gets a tighter per-IP limit
// than the other writes.
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	writeLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	g := rg.Group("/users")
	{
		g.GET("", m.Handler.List)
		g.GET("/:id", m.Handler.Get)

		g.POST("", registerLimiter, m.Handler.Create)
		g.PUT("/:id/contact", writeLimiter, m.Handler.UpdateContact)
		g.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
