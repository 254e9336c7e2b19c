// Package app provides the dependency injection container assembling the
// identity service components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	accessUsecase "github.com/allisson/identity/internal/access/usecase"
	"github.com/allisson/identity/internal/config"
	"github.com/allisson/identity/internal/database"
	eventRepository "github.com/allisson/identity/internal/event/repository"
	eventService "github.com/allisson/identity/internal/event/service"
	membershipRepository "github.com/allisson/identity/internal/membership/repository"
	membershipUsecase "github.com/allisson/identity/internal/membership/usecase"
	"github.com/allisson/identity/internal/metrics"
	roleRepository "github.com/allisson/identity/internal/role/repository"
	tokenRepository "github.com/allisson/identity/internal/token/repository"
	tokenService "github.com/allisson/identity/internal/token/service"
	tokenUsecase "github.com/allisson/identity/internal/token/usecase"
	userRepository "github.com/allisson/identity/internal/user/repository"
)

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	txManager database.TxManager

	membershipRepo   MembershipRepository
	userRepo         UserRepository
	roleRepo         RoleRepository
	revokedTokenRepo RevokedTokenRepository
	eventRepo        EventRepository

	tokenSigner     tokenService.TokenSigner
	passwordService tokenService.PasswordService

	eventNotifier   *eventService.ChannelNotifier
	eventDispatcher *eventService.Dispatcher

	tokenUseCase      tokenUsecase.TokenUseCase
	accessUseCase     accessUsecase.AccessControlUseCase
	membershipUseCase membershipUsecase.MembershipUseCase

	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	metricsServer   *metrics.Server

	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	reposInit             sync.Once
	servicesInit          sync.Once
	notifierInit          sync.Once
	dispatcherInit        sync.Once
	tokenUseCaseInit      sync.Once
	accessUseCaseInit     sync.Once
	membershipUseCaseInit sync.Once
	metricsInit           sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance, creating it on first access.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection, opening it on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// initRepositories creates all repositories sharing one connection. The
// implementation is selected by the configured database driver.
func (c *Container) initRepositories() error {
	var initErr error
	c.reposInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["repos"] = fmt.Errorf("failed to get database for repositories: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.membershipRepo = membershipRepository.NewMySQLMembershipRepository(db)
			c.userRepo = userRepository.NewMySQLUserRepository(db)
			c.roleRepo = roleRepository.NewMySQLRoleRepository(db)
			c.revokedTokenRepo = tokenRepository.NewMySQLRevokedTokenRepository(db)
			c.eventRepo = eventRepository.NewMySQLEventRepository(db)
		case "postgres":
			c.membershipRepo = membershipRepository.NewPostgreSQLMembershipRepository(db)
			c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
			c.roleRepo = roleRepository.NewPostgreSQLRoleRepository(db)
			c.revokedTokenRepo = tokenRepository.NewPostgreSQLRevokedTokenRepository(db)
			c.eventRepo = eventRepository.NewPostgreSQLEventRepository(db)
		default:
			c.initErrors["repos"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["repos"]; exists {
		initErr = storedErr
	}
	return initErr
}

// MembershipRepository returns the membership repository instance.
func (c *Container) MembershipRepository() (MembershipRepository, error) {
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	return c.membershipRepo, nil
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (UserRepository, error) {
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	return c.userRepo, nil
}

// RoleRepository returns the role repository instance.
func (c *Container) RoleRepository() (RoleRepository, error) {
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	return c.roleRepo, nil
}

// RevokedTokenRepository returns the revoked token repository instance.
func (c *Container) RevokedTokenRepository() (RevokedTokenRepository, error) {
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	return c.revokedTokenRepo, nil
}

// EventRepository returns the event repository instance.
func (c *Container) EventRepository() (EventRepository, error) {
	if err := c.initRepositories(); err != nil {
		return nil, err
	}
	return c.eventRepo, nil
}

// initServices creates the token signer and password service.
func (c *Container) initServices() error {
	var initErr error
	c.servicesInit.Do(func() {
		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["services"] = fmt.Errorf("failed to get membership repository for services: %w", err)
			return
		}
		c.tokenSigner = tokenService.NewJWTTokenService(membershipRepo)
		c.passwordService = tokenService.NewPasswordService()
	})
	if storedErr, exists := c.initErrors["services"]; exists {
		initErr = storedErr
	}
	return initErr
}

// TokenSigner returns the JWT token signer instance.
func (c *Container) TokenSigner() (tokenService.TokenSigner, error) {
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c.tokenSigner, nil
}

// PasswordService returns the password service instance.
func (c *Container) PasswordService() (tokenService.PasswordService, error) {
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c.passwordService, nil
}

// EventNotifier returns the in-process event notifier instance.
func (c *Container) EventNotifier() *eventService.ChannelNotifier {
	c.notifierInit.Do(func() {
		c.eventNotifier = eventService.NewChannelNotifier(c.config.EventQueueSize, c.Logger())
	})
	return c.eventNotifier
}

// EventDispatcher returns the event dispatcher instance.
func (c *Container) EventDispatcher() (*eventService.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get event repository for dispatcher: %w", err)
			return
		}
		c.eventDispatcher = eventService.NewDispatcher(c.EventNotifier(), eventRepo, c.Logger())
	})
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.eventDispatcher, nil
}

// TokenUseCase returns the token lifecycle use case, wrapped with metrics
// when metrics are enabled.
func (c *Container) TokenUseCase() (tokenUsecase.TokenUseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		revokedTokenRepo, err := c.RevokedTokenRepository()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		signer, err := c.TokenSigner()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		passwordService, err := c.PasswordService()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}

		useCase := tokenUsecase.NewTokenUseCase(
			txManager,
			membershipRepo,
			userRepo,
			revokedTokenRepo,
			signer,
			passwordService,
			c.EventNotifier(),
		)

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		c.tokenUseCase = tokenUsecase.NewTokenUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AccessControlUseCase returns the permission evaluation use case.
func (c *Container) AccessControlUseCase() (accessUsecase.AccessControlUseCase, error) {
	c.accessUseCaseInit.Do(func() {
		roleRepo, err := c.RoleRepository()
		if err != nil {
			c.initErrors["accessUseCase"] = err
			return
		}
		c.accessUseCase = accessUsecase.NewAccessControlUseCase(roleRepo)
	})
	if storedErr, exists := c.initErrors["accessUseCase"]; exists {
		return nil, storedErr
	}
	return c.accessUseCase, nil
}

// MembershipUseCase returns the membership use case.
func (c *Container) MembershipUseCase() (membershipUsecase.MembershipUseCase, error) {
	c.membershipUseCaseInit.Do(func() {
		membershipRepo, err := c.MembershipRepository()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
			return
		}
		roleRepo, err := c.RoleRepository()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
			return
		}
		revokedTokenRepo, err := c.RevokedTokenRepository()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
			return
		}
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
			return
		}
		c.membershipUseCase = membershipUsecase.NewMembershipUseCase(
			membershipRepo,
			userRepo,
			roleRepo,
			revokedTokenRepo,
			eventRepo,
		)
	})
	if storedErr, exists := c.initErrors["membershipUseCase"]; exists {
		return nil, storedErr
	}
	return c.membershipUseCase, nil
}

// MetricsProvider returns the metrics provider, nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	if err := c.initMetrics(); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

func (c *Container) initMetrics() error {
	var initErr error
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}

		businessMetrics, err := metrics.NewBusinessMetrics(
			provider.MeterProvider(),
			c.config.MetricsNamespace,
		)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}

		c.metricsProvider = provider
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["metrics"]; exists {
		initErr = storedErr
	}
	return initErr
}

// MetricsServer returns the metrics HTTP server, nil when metrics are disabled.
func (c *Container) MetricsServer() (*metrics.Server, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = metrics.NewServer("", c.config.MetricsPort, c.Logger(), provider)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.eventNotifier != nil {
		c.eventNotifier.Close()
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured logger based on the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
