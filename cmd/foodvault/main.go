package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/devitsbeka/foodvault/internal/backup"
	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/email"
	"github.com/devitsbeka/foodvault/internal/logging"
	"github.com/devitsbeka/foodvault/internal/push"
	"github.com/devitsbeka/foodvault/internal/server"
)

func main() {
	// A missing .env is fine; deployments set the environment directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("FOODVAULT_LOG_LEVEL"), os.Getenv("FOODVAULT_LOG_FORMAT"))

	port := envDefault("FOODVAULT_PORT", "8080")
	dbPath := envDefault("FOODVAULT_DB_PATH", "foodvault.db")
	baseURL := os.Getenv("FOODVAULT_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	// Invite tokens are signed with this secret; without it anyone could
	// forge a family invite.
	inviteSecret := os.Getenv("FOODVAULT_INVITE_SECRET")
	if inviteSecret == "" {
		logger.Error("FOODVAULT_INVITE_SECRET is required")
		os.Exit(1)
	}
	adminEmail := os.Getenv("FOODVAULT_ADMIN_EMAIL")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("FOODVAULT_POSTMARK_TOKEN"),
		os.Getenv("FOODVAULT_FROM_EMAIL"),
		baseURL,
	)

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("FOODVAULT_S3_ENDPOINT"),
			Bucket:    os.Getenv("FOODVAULT_S3_BUCKET"),
			Region:    envDefault("FOODVAULT_S3_REGION", "auto"),
			AccessKey: os.Getenv("FOODVAULT_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("FOODVAULT_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("FOODVAULT_BACKUP_PASSPHRASE"),
		ScheduleHour:  envInt("FOODVAULT_BACKUP_HOUR", 3),
		RetentionDays: envInt("FOODVAULT_BACKUP_RETENTION_DAYS", 30),
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("FOODVAULT_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("FOODVAULT_VAPID_PRIVATE_KEY"),
		Subscriber:      os.Getenv("FOODVAULT_PUSH_CONTACT"),
	}

	srv := server.New(db, emailClient, inviteSecret, adminEmail, backupCfg, pushCfg, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if srv.BackupManager().Enabled() {
		srv.BackupManager().Start(bgCtx)
	} else {
		logger.Info("backups disabled; set the S3 and passphrase variables to enable them")
	}
	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(bgCtx)
	} else {
		logger.Info("push delivery disabled; set the VAPID key variables to enable it")
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up expired sessions", "count", n)
				}
				if err := srv.PushStore().CleanupSent(time.Now().AddDate(0, 0, -90)); err != nil {
					logger.Error("cleanup sent notifications", "error", err)
				}
				srv.RateLimiter().Cleanup()
			case <-bgCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("foodvault starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	bgCancel()
	srv.BackupManager().Stop()
	if sched := srv.PushScheduler(); sched != nil {
		sched.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
