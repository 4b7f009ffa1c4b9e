package container

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"

	authorHandler "library-backend/internal/domains/author/handler"
	authorRepo "library-backend/internal/domains/author/repository"
	authorService "library-backend/internal/domains/author/service"

	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"

	patronHandler "library-backend/internal/domains/patron/handler"
	patronRepo "library-backend/internal/domains/patron/repository"
	patronService "library-backend/internal/domains/patron/service"

	loanHandler "library-backend/internal/domains/loan/handler"
	loanRepo "library-backend/internal/domains/loan/repository"
	loanService "library-backend/internal/domains/loan/service"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config, then
// infrastructure, then repositories, services, handlers.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache

	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface
	PatronRepo patronRepo.RepositoryInterface
	LoanRepo   loanRepo.RepositoryInterface

	AuthorService authorService.ServiceInterface
	BookService   bookService.ServiceInterface
	PatronService patronService.ServiceInterface
	LoanService   loanService.ServiceInterface

	AuthorHandler *authorHandler.AuthorHandler
	BookHandler   *bookHandler.BookHandler
	PatronHandler *patronHandler.PatronHandler
	LoanHandler   *loanHandler.LoanHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Config loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	logger.Info("Database connected", nil)

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Cache is a read accelerator only; run without it.
			logger.Warn("Redis connection failed (non-critical)", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			logger.Info("Redis connected", nil)
		}
	}
	c.Cache = redisCache

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	c.initHandlers()

	logger.Info("Container initialized", nil)
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AuthorRepo = authorRepo.NewRepository(pool)
	c.BookRepo = bookRepo.NewRepository(pool)
	c.PatronRepo = patronRepo.NewRepository(pool)
	c.LoanRepo = loanRepo.NewRepository(pool)
}

func (c *Container) initServices() error {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo)
	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache)
	c.PatronService = patronService.NewPatronService(c.PatronRepo)

	policy, err := lendingPolicy(c.Config.Lending)
	if err != nil {
		return err
	}
	c.LoanService = loanService.NewLedgerService(
		c.LoanRepo,
		c.BookRepo,
		c.PatronRepo,
		c.Cache,
		policy,
	)
	return nil
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.PatronHandler = patronHandler.NewPatronHandler(c.PatronService)
	c.LoanHandler = loanHandler.NewLoanHandler(c.LoanService)
}

func lendingPolicy(cfg config.LendingConfig) (loanService.Policy, error) {
	fine, err := decimal.NewFromString(cfg.DailyOverdueFine)
	if err != nil {
		return loanService.Policy{}, fmt.Errorf("invalid DAILY_OVERDUE_FINE %q: %w", cfg.DailyOverdueFine, err)
	}

	return loanService.Policy{
		LoanPeriod:       time.Duration(cfg.LoanPeriodDays) * 24 * time.Hour,
		DailyOverdueFine: fine,
	}, nil
}

// Cleanup releases infrastructure connections. Call on shutdown.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info("Container cleaned up", nil)
}
