package router

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/givecycle/givecycle/config"
	"github.com/givecycle/givecycle/internal/application"
	"github.com/givecycle/givecycle/internal/infrastructure/postgres"
	handlers "github.com/givecycle/givecycle/internal/interface/http"
	"github.com/givecycle/givecycle/internal/router/modules"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// Deps carries everything the feature modules need. Redis, Publisher, ES and
// GCS may be nil; the corresponding features degrade gracefully.
type Deps struct {
	Cfg       *config.Config
	Logger    *logrus.Logger
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Publisher application.ClaimPublisher
	ES        *elasticsearch.Client
	GCS       *storage.Client
	JWT       *helpers.JWTManager
}

// InitModules builds the repositories, services and handlers and registers all
// feature modules with the registry. Called once during startup.
func InitModules(r *Registry, d Deps) {
	userRepo := postgres.NewUserRepository(d.Pool)
	announcementRepo := postgres.NewAnnouncementRepository(d.Pool)

	userSvc := application.NewUserService(userRepo, d.JWT, d.Redis, d.Logger)
	announcementSvc := application.NewAnnouncementService(
		announcementRepo,
		userRepo,
		d.Publisher,
		d.ES,
		d.Cfg.ESAnnouncementsIndex,
		d.GCS,
		d.Cfg.GCSBucket,
		d.Logger,
	)

	userHandler := handlers.NewUserHandler(userSvc, d.Logger)
	announcementHandler := handlers.NewAnnouncementHandler(announcementSvc, d.Logger)
	authHandler := handlers.NewAuthHandler(userSvc, d.Logger, d.Cfg.CookieDomain, d.Cfg.CookieSecure)

	r.Add(modules.NewUserModule(userHandler, d.Redis))
	r.Add(modules.NewAnnouncementModule(announcementHandler, d.Redis))
	r.Add(modules.NewAuthModule(authHandler, d.JWT, d.Redis))
}
