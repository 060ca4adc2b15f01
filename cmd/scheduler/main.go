package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/segyhp/xp-lending/internal/config"
	"github.com/segyhp/xp-lending/internal/notify"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/segyhp/xp-lending/internal/repository/cache"
	"github.com/segyhp/xp-lending/internal/service"
	"github.com/segyhp/xp-lending/internal/settings"
	"github.com/segyhp/xp-lending/pkg/logger"
)

// reminderTimeout bounds a single reminder run.
const reminderTimeout = 5 * time.Minute

type reminderJob interface {
	SendDueReminders(ctx context.Context, window time.Duration) (int, error)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", logger.ErrorField(err))
	}

	logger.Init(cfg.Server.Env, cfg.Logging.Level)
	defer logger.Sync()

	logger.Info("Starting reminder scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	settingsService := settings.NewService(repository.NewSettingRepository(db), cache.NewSettingsCache(redisClient, cfg.Redis.SettingsTTL))
	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		notify.NewRedisPublisher(redisClient, cfg.Redis.ChannelPrefix),
	)
	xpService := service.NewXPService(userRepo, settingsService, notificationService)
	lendingService := service.NewLendingService(userRepo, repository.NewLoanRepository(db), settingsService, xpService, notificationService, cfg.Business)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	if err := setupCronJobs(c, cfg, lendingService); err != nil {
		logger.Fatal("Failed to schedule jobs", logger.ErrorField(err))
	}

	c.Start()
	logger.Info("Scheduler started successfully",
		logger.String("reminder_spec", cfg.Scheduler.ReminderSpec),
		logger.String("timezone", cfg.Scheduler.Timezone),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	// Wait for a running job to finish
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, job reminderJob) error {
	// Reminders for approved loans coming due (daily at 9 AM by default)
	_, err := c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		runReminders(job, cfg.Scheduler.ReminderWindow)
	})
	return err
}

func runReminders(job reminderJob, window time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
	defer cancel()

	start := time.Now()
	sent, err := job.SendDueReminders(ctx, window)
	if err != nil {
		logger.Error("Due reminder job failed", logger.ErrorField(err), logger.Int("sent", sent))
		return
	}
	logger.Info("Due reminder job finished",
		logger.Int("sent", sent),
		logger.Duration("window", window),
		logger.Duration("took", time.Since(start)),
	)
}
