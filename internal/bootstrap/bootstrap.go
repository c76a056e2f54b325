package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/placement/internal/app/auth"
	appControllers "github.com/yigit/placement/internal/app/controllers"
	appMigrations "github.com/yigit/placement/internal/app/migrations"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	appRoutes "github.com/yigit/placement/internal/app/routes"
	appServices "github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/config"
	"github.com/yigit/placement/internal/db"
	appMiddleware "github.com/yigit/placement/internal/middleware"
	pkgAuth "github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/queue"
	"github.com/yigit/placement/internal/pkg/validation"
	"github.com/yigit/placement/internal/pkg/websocket"
	"github.com/yigit/placement/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Policy      *appAuth.PolicyTable
	Authz       *appAuth.AuthorizationService
	FileStorage filestorage.FileStorage
	Mailer      email.EmailService

	// Redis and Worker are nil when the queue is disabled
	Redis  *redis.Client
	Worker *queue.Worker

	// Hub pushes stored notifications to open WebSocket connections
	Hub *websocket.Hub

	AuthService          *appServices.AuthService
	PasswordResetService *appServices.PasswordResetService
	UserService          *appServices.UserService
	DepartmentService    *appServices.DepartmentService
	StudentService       *appServices.StudentService
	CompanyService       *appServices.CompanyService
	JobService           *appServices.JobService
	ApplicationService   *appServices.ApplicationService
	InterviewService     *appServices.InterviewService
	AnnouncementService  *appServices.AnnouncementService
	NotificationService  *appServices.NotificationService
	DashboardService     *appServices.DashboardService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: "placement-api",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default records.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	seedCfg := seed.Config{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
	}
	if err := seed.CreateDefaultData(context.Background(), database.Pool, seedCfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// setupFileStorage picks the local disk or S3 backend.
func setupFileStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.FileStorage, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := filestorage.NewS3Client(ctx, cfg.Storage.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
		}
		lgr.Info().Str("bucket", cfg.Storage.S3Bucket).Msg("Using S3 file storage")
		return filestorage.NewS3Storage(client, cfg.Storage.S3Bucket, cfg.Storage.S3Region,
			cfg.Storage.S3Prefix, cfg.Storage.S3BaseURL), nil
	default:
		storage, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.BaseURL()+"/uploads")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		lgr.Info().Str("path", cfg.Storage.LocalPath).Msg("Using local file storage")
		return storage, nil
	}
}

// setupDispatcher returns the notification dispatcher. With Redis enabled
// events go through the queue and fall back to inline delivery when the
// enqueue fails.
func setupDispatcher(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) appServices.Dispatcher {
	inline := appServices.NewInlineDispatcher(deps.NotificationService, lgr)
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, notifications are delivered inline")
		return inline
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := queue.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, notifications are delivered inline")
		return inline
	}

	q := queue.NewRedisQueue(client, cfg.Redis.QueueName)
	worker := queue.NewWorker(q, queue.WorkerConfig{Workers: cfg.Redis.Workers}, lgr)
	worker.Handle(appServices.NotificationJobType, deps.NotificationService.HandleJob)

	deps.Redis = client
	deps.Worker = worker
	return appServices.NewQueueDispatcher(q, inline, lgr)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)
	repos := deps.Repos

	var err error
	deps.FileStorage, err = setupFileStorage(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, err
	}

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.BaseURL(),
	}, lgr)

	deps.Policy = appAuth.NewDefaultPolicy()
	deps.Authz = appAuth.NewAuthorizationService(deps.Policy)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr)
	deps.NotificationService = appServices.NewNotificationService(
		repos.NotificationRepository,
		repos.UserRepository,
		deps.Authz,
		deps.Mailer,
		lgr,
	).WithPublisher(deps.Hub)
	notifier := setupDispatcher(cfg, deps, lgr)

	deps.AuthService = appServices.NewAuthService(
		database,
		repos.UserRepository,
		repos.TokenRepository,
		repos.StudentRepository,
		repos.DepartmentRepository,
		deps.JWTService,
		lgr,
	)
	deps.UserService = appServices.NewUserService(
		database,
		repos.UserRepository,
		repos.TokenRepository,
		repos.DepartmentRepository,
		deps.Authz,
		lgr,
	)
	deps.DepartmentService = appServices.NewDepartmentService(repos.DepartmentRepository, deps.Authz, lgr)
	deps.StudentService = appServices.NewStudentService(
		database,
		repos.StudentRepository,
		repos.UserRepository,
		deps.FileStorage,
		deps.Authz,
		notifier,
		lgr,
	)
	deps.CompanyService = appServices.NewCompanyService(
		database,
		repos.CompanyRepository,
		deps.FileStorage,
		deps.Authz,
		notifier,
		lgr,
	)
	deps.JobService = appServices.NewJobService(
		repos.JobRepository,
		repos.CompanyRepository,
		repos.StudentRepository,
		repos.ApplicationRepository,
		deps.Authz,
		notifier,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		database,
		repos.ApplicationRepository,
		repos.StudentRepository,
		repos.JobRepository,
		repos.InterviewRepository,
		deps.Authz,
		notifier,
		lgr,
	)
	deps.InterviewService = appServices.NewInterviewService(
		database,
		repos.InterviewRepository,
		repos.ApplicationRepository,
		deps.Authz,
		notifier,
		lgr,
	)
	deps.AnnouncementService = appServices.NewAnnouncementService(repos.AnnouncementRepository, deps.Authz, lgr)
	deps.DashboardService = appServices.NewDashboardService(
		repos.DashboardRepository,
		repos.ApplicationRepository,
		repos.InterviewRepository,
		repos.JobRepository,
		repos.StudentRepository,
		deps.Authz,
		lgr,
	)

	deps.PasswordResetService = appServices.NewPasswordResetService(
		database,
		repos.UserRepository,
		repos.PasswordResetRepository,
		repos.TokenRepository,
		deps.Mailer,
		cfg.BaseURL()+"/reset-password",
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(
		deps.JWTService,
		repos.UserRepository,
		repos.StudentRepository,
		deps.Policy,
	)

	stream := websocket.NewHandler(deps.Hub, cfg.Server.WebSocketOrigins, lgr)
	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.AuthService, lgr),
		PasswordReset: appControllers.NewPasswordResetController(deps.PasswordResetService, lgr),
		User:          appControllers.NewUserController(deps.UserService),
		Department:    appControllers.NewDepartmentController(deps.DepartmentService),
		Student:       appControllers.NewStudentController(deps.StudentService),
		Company:       appControllers.NewCompanyController(deps.CompanyService),
		Job:           appControllers.NewJobController(deps.JobService),
		Application:   appControllers.NewApplicationController(deps.ApplicationService),
		Interview:     appControllers.NewInterviewController(deps.InterviewService),
		Announcement:  appControllers.NewAnnouncementController(deps.AnnouncementService),
		Notification:  appControllers.NewNotificationController(deps.NotificationService, stream),
		Dashboard:     appControllers.NewDashboardController(deps.DashboardService),
		HealthChecker: func(c *gin.Context) error {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			return database.Pool.Ping(ctx)
		},
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr), appMiddleware.Recovery(lgr))
	if cfg.Server.MaxUploadMB > 0 {
		router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

// StartBackground launches the notification hub, the queue workers and the
// sweeper for posting deadlines and stale reset tokens. All stop when ctx is cancelled.
func StartBackground(ctx context.Context, deps *Dependencies, interval time.Duration) {
	go deps.Hub.Run(ctx)
	if deps.Worker != nil {
		deps.Worker.Start(ctx)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := deps.JobService.CloseExpired(ctx); err != nil {
					deps.Logger.Error().Err(err).Msg("Failed to close expired job postings")
				}
				if _, err := deps.PasswordResetService.PurgeExpired(ctx); err != nil {
					deps.Logger.Error().Err(err).Msg("Failed to purge password reset tokens")
				}
			}
		}
	}()
}
