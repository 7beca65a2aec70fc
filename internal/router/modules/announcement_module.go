package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/givecycle/givecycle/internal/interface/http"
	"github.com/givecycle/givecycle/internal/interface/middleware"
)

// AnnouncementModule wires the announcement lifecycle routes.
// Reads are open; writes carry a per-IP rate limit.
type AnnouncementModule struct {
	Handler *handlers.AnnouncementHandler
	Redis   *redis.Client
}

func NewAnnouncementModule(h *handlers.AnnouncementHandler, rdb *redis.Client) *AnnouncementModule {
	return &AnnouncementModule{Handler: h, Redis: rdb}
}

func (m *AnnouncementModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	g := rg.Group("/announcements")
	{
		g.GET("", m.Handler.List)
		g.GET("/unclaimed", m.Handler.ListUnclaimed)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.GET("/donor/:donorId", m.Handler.ListByDonor)
		g.GET("/donee/:doneeId", m.Handler.ListByDonee)
		g.GET("/donor/:donorId/donee/:doneeId", m.Handler.ListByDonorAndDonee)

		g.POST("", writeLimiter, m.Handler.Create)
		g.POST("/:id/photo", writeLimiter, m.Handler.UploadPhoto)
		g.PUT("/:id", writeLimiter, m.Handler.Update)
		g.PUT("/:id/userDonee/:userId", writeLimiter, m.Handler.Claim)
		g.PUT("/:id/undo-claim", writeLimiter, m.Handler.UndoClaim)
		g.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
