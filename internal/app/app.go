package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "chrona/docs"
	"chrona/internal/config"
	"chrona/internal/handlers"
	"chrona/internal/pdf"
	"chrona/internal/repositories"
	"chrona/internal/routes"
	"chrona/internal/services"
	"chrona/internal/store"
)

// OpenStore returns the document store selected by database.driver. The
// returned close func is never nil.
func OpenStore(cfg *config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }
	if cfg.Database.Driver == config.DriverMemory {
		log.Printf("[app] using in-memory store; data is lost on exit")
		return store.NewMemoryStore(), noop, nil
	}

	if cfg.Database.Driver == config.DriverMongo {
		return openMongo(cfg)
	}

	db, err := store.OpenPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, noop, err
	}
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		log.Printf("[app] migrations applied")
	}
	return store.NewPostgresStore(db), db.Close, nil
}

func openMongo(cfg *config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }
	ctx := context.Background()
	client, err := store.OpenMongo(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, noop, err
	}
	st := store.NewMongoStore(client.Database(cfg.Database.Name))
	if cfg.Database.AutoMigrate {
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, noop, err
		}
		log.Printf("[app] mongo indexes ensured")
	}
	closeFn := func() error { return client.Disconnect(context.Background()) }
	return st, closeFn, nil
}

// NewRouter wires repositories, services and handlers over st.
func NewRouter(cfg *config.Config, st store.Store, now func() time.Time) *gin.Engine {
	// === Repos ===
	userRepo := repositories.NewUserRepository(st)
	taskRepo := repositories.NewTaskRepository(st)
	entryRepo := repositories.NewTimeEntryRepository(st)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	var verifier services.IdentityVerifier
	if cfg.Auth.GoogleClientID != "" {
		verifier = services.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}

	userService := services.NewUserService(userRepo, authService, emailService, verifier)
	taskService := services.NewTaskService(taskRepo, entryRepo, now)
	entryService := services.NewTimeEntryService(entryRepo, taskRepo, now)
	statsService := services.NewStatsService(entryRepo, taskRepo, now)

	reports := pdf.NewReportGenerator(cfg.Reports.FontPath)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	entryHandler := handlers.NewTimeEntryHandler(entryService)
	statsHandler := handlers.NewStatsHandler(statsService, userService, reports)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return routes.SetupRoutes(
		router,
		authService,
		authHandler,
		userHandler,
		taskHandler,
		entryHandler,
		statsHandler,
	)
}

func Run() {
	cfg := config.LoadConfig()

	st, closeStore, err := OpenStore(cfg)
	if err != nil {
		log.Fatal("[app] store init failed: ", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           NewRouter(cfg, st, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[app] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("[app] server failed: ", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// operations run concurrently, so the store closes only after the server drains
			"http-server": func(ctx context.Context) error {
				err := srv.Shutdown(ctx)
				if cerr := closeStore(); cerr != nil && err == nil {
					err = cerr
				}
				return err
			},
		},
	)
	exitCode := <-wait
	log.Printf("[app] exited with code %d", exitCode)
	os.Exit(exitCode)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
