package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	appControllers "github.com/yigit/schooladmin/internal/app/controllers"
	appMigrations "github.com/yigit/schooladmin/internal/app/migrations"
	appRepos "github.com/yigit/schooladmin/internal/app/repositories"
	appRoutes "github.com/yigit/schooladmin/internal/app/routes"
	appServices "github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/config"
	"github.com/yigit/schooladmin/internal/db"
	appMiddleware "github.com/yigit/schooladmin/internal/middleware"
	pkgAuth "github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
	"github.com/yigit/schooladmin/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	FeeTypeService       appServices.FeeTypeService
	FeeDefinitionService appServices.FeeDefinitionService
	FeeAssignmentService appServices.FeeAssignmentService
	FeeSummaryService    appServices.FeeSummaryService
	PaymentItemService   appServices.PaymentItemService
	WalletService        appServices.WalletService
	ClassService         appServices.ClassService
	DivisionService      appServices.DivisionService
	Controllers          appRoutes.Controllers
	AuthMiddleware       *appMiddleware.AuthMiddleware
	JWTService           *pkgAuth.JWTService
	Repos                *appRepos.Repositories
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	if err := cfg.ValidateServer(); err != nil {
		logger.Error().Err(err).Msg("Invalid server configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewFeeTypeRepository(database.Pool), lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// WalletLimitsFromConfig converts the configured wallet limits to decimals.
func WalletLimitsFromConfig(cfg *config.Config) appServices.WalletLimits {
	return appServices.WalletLimits{
		MaxTopup:            decimal.NewFromFloat(cfg.Wallet.MaxTopup),
		DefaultDailyLimit:   decimal.NewFromFloat(cfg.Wallet.DefaultDailyLimit),
		DefaultLowBalance:   decimal.NewFromFloat(cfg.Wallet.DefaultLowBalance),
		BulkTopupMaxWallets: cfg.Wallet.BulkTopupMaxWallets,
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	repos := deps.Repos
	deps.FeeTypeService = appServices.NewFeeTypeService(repos.FeeTypeRepository)
	deps.FeeDefinitionService = appServices.NewFeeDefinitionService(repos.FeeDefinitionRepository, repos.FeeTypeRepository)
	deps.FeeAssignmentService = appServices.NewFeeAssignmentService(repos.FeeAssignmentRepository)
	deps.FeeSummaryService = appServices.NewFeeSummaryService(repos.ClassRepository, repos.FeeAssignmentRepository, cfg.Fees.TermsPerYear)
	deps.PaymentItemService = appServices.NewPaymentItemService(repos.PaymentItemRepository)
	deps.WalletService = appServices.NewWalletService(repos.WalletRepository, WalletLimitsFromConfig(cfg))
	deps.ClassService = appServices.NewClassService(repos.ClassRepository, repos.EnrollmentRepository)
	deps.DivisionService = appServices.NewDivisionService(repos.DivisionRepository)

	deps.Controllers = appRoutes.Controllers{
		FeeType:       appControllers.NewFeeTypeController(deps.FeeTypeService),
		FeeDefinition: appControllers.NewFeeDefinitionController(deps.FeeDefinitionService),
		FeeAssignment: appControllers.NewFeeAssignmentController(deps.FeeAssignmentService, deps.FeeSummaryService),
		PaymentItem:   appControllers.NewPaymentItemController(deps.PaymentItemService),
		Wallet:        appControllers.NewWalletController(deps.WalletService),
		Class:         appControllers.NewClassController(deps.ClassService, deps.DivisionService),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
