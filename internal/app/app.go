package app

import (
	"net/http"

	"famconomy-go/internal/config"
	"famconomy-go/internal/db"
	budgetdomain "famconomy-go/internal/domain/budget"
	choredomain "famconomy-go/internal/domain/chore"
	familydomain "famconomy-go/internal/domain/family"
	guidelinedomain "famconomy-go/internal/domain/guideline"
	shoppingdomain "famconomy-go/internal/domain/shopping"
	syncdomain "famconomy-go/internal/domain/sync"
	userdomain "famconomy-go/internal/domain/user"
	"famconomy-go/internal/repository/inmemory"
	budgetrepo "famconomy-go/internal/repository/postgres/budget"
	chorerepo "famconomy-go/internal/repository/postgres/chore"
	familyrepo "famconomy-go/internal/repository/postgres/family"
	guidelinerepo "famconomy-go/internal/repository/postgres/guideline"
	shoppingrepo "famconomy-go/internal/repository/postgres/shopping"
	syncrepo "famconomy-go/internal/repository/postgres/sync"
	userrepo "famconomy-go/internal/repository/postgres/user"
	redisrepo "famconomy-go/internal/repository/redis"
	"famconomy-go/internal/transport/httpserver"
	"famconomy-go/internal/transport/httpserver/handler"
	"famconomy-go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	cfg         config.Config
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	var familyCache familydomain.Cache
	if cfg.Redis.Enabled {
		log.Info("app: using redis family cache", "addr", cfg.Redis.Addr)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		familyCache = redisrepo.NewRedisFamilyCache(redisClient, "famconomy:family:user")
	} else {
		familyCache = inmemory.NewInMemoryFamilyCache()
	}

	families := familydomain.NewService(familyrepo.NewPostgres(dbConn), familyCache, cfg.Cache.FamilyTTL)
	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	guidelines := guidelinedomain.NewService(guidelinerepo.NewPostgres(dbConn), families, guidelinedomain.Config{
		NewRuleWindow: cfg.Guidelines.NewRuleWindow,
	})
	shopping := shoppingdomain.NewService(shoppingrepo.NewPostgres(dbConn))
	budget := budgetdomain.NewService(budgetrepo.NewPostgres(dbConn), inmemory.NewInMemoryCategoriesCache(), cfg.Cache.CategoriesTTL)
	chores := choredomain.NewService(chorerepo.NewPostgres(dbConn))
	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn), shopping, chores)

	handlers := handler.New(guidelines, families, shopping, budget, chores, syncService, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, users, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:         cfg,
		httpServer:  srv,
		db:          dbConn,
		redisClient: redisClient,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
