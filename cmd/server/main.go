package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/xp-lending/internal/config"
	"github.com/segyhp/xp-lending/internal/handler"
	"github.com/segyhp/xp-lending/internal/notify"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/segyhp/xp-lending/internal/repository/cache"
	"github.com/segyhp/xp-lending/internal/service"
	"github.com/segyhp/xp-lending/internal/settings"
	"github.com/segyhp/xp-lending/pkg/auth"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/response"
)

type handlers struct {
	auth          *handler.AuthMiddleware
	health        *handler.HealthHandler
	lending       *handler.LendingHandler
	feed          *handler.FeedHandler
	notifications *handler.NotificationHandler
	admin         *handler.AdminHandler
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", logger.ErrorField(err))
	}

	logger.Init(cfg.Server.Env, cfg.Logging.Level)
	defer logger.Sync()

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	settingsService := settings.NewService(settingRepo, cache.NewSettingsCache(redisClient, cfg.Redis.SettingsTTL))
	notificationService := service.NewNotificationService(notificationRepo, notify.NewRedisPublisher(redisClient, cfg.Redis.ChannelPrefix))
	xpService := service.NewXPService(userRepo, settingsService, notificationService)
	lendingService := service.NewLendingService(userRepo, loanRepo, settingsService, xpService, notificationService, cfg.Business)
	feedService := service.NewFeedService(postRepo, userRepo, settingsService, xpService, notificationService)
	userService := service.NewUserService(userRepo, xpService, notificationService)

	h := handlers{
		auth: handler.NewAuthMiddleware(auth.NewJWTService(cfg.Auth), userService),
		health: handler.NewHealthHandler(cfg.Health.Timeout, map[string]handler.Check{
			"database": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
		lending:       handler.NewLendingHandler(lendingService),
		feed:          handler.NewFeedHandler(feedService),
		notifications: handler.NewNotificationHandler(notificationService),
		admin:         handler.NewAdminHandler(userService, settingsService),
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.CORSMiddleware(setupRoutes(h)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", logger.String("addr", server.Addr), logger.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
		return
	}

	logger.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(h handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", h.health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.health.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.auth.RequireAuth)

	api.HandleFunc("/users/me", h.lending.Me).Methods("GET")

	api.HandleFunc("/loans/terms", h.lending.CalculateTerms).Methods("POST")
	api.HandleFunc("/loans", h.lending.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", h.lending.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}", h.lending.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/repay", h.lending.RepayLoan).Methods("POST")

	api.HandleFunc("/posts", h.feed.ListPosts).Methods("GET")
	api.HandleFunc("/posts", h.feed.CreatePost).Methods("POST")
	api.HandleFunc("/posts/{postId}", h.feed.DeletePost).Methods("DELETE")
	api.HandleFunc("/posts/{postId}/reactions", h.feed.React).Methods("POST")

	api.HandleFunc("/notifications", h.notifications.List).Methods("GET")
	api.HandleFunc("/notifications/{notificationId}/read", h.notifications.MarkRead).Methods("PATCH")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(h.auth.RequireAdmin)

	admin.HandleFunc("/users", h.admin.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{userId}/ban", h.admin.SetBanned).Methods("PATCH")
	admin.HandleFunc("/users/{userId}/membership", h.admin.SetMembership).Methods("PATCH")
	admin.HandleFunc("/users/{userId}/xp", h.admin.AdjustXP).Methods("PATCH")

	admin.HandleFunc("/settings", h.admin.ListSettings).Methods("GET")
	admin.HandleFunc("/settings", h.admin.UpdateSetting).Methods("PUT")
	admin.HandleFunc("/settings/{key}", h.admin.GetSetting).Methods("GET")

	admin.HandleFunc("/loans", h.lending.ListAllLoans).Methods("GET")
	admin.HandleFunc("/loans/{loanId}/approve", h.lending.ApproveLoan).Methods("POST")
	admin.HandleFunc("/loans/{loanId}/reject", h.lending.RejectLoan).Methods("POST")

	return router
}
