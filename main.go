package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-password/password"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelist/api"
	"reelist/config"
	"reelist/handlers"
	"reelist/internal/database"
	"reelist/models"
	"reelist/services/accounts"
	"reelist/services/metadata"
	"reelist/services/sessions"
	"reelist/services/watchlists"
	"reelist/utils"
)

func main() {
	demoMode := flag.Bool("demo", false, "seed a demo account with a generated password on startup")
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 reelist backend starting...")

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	configPath := os.Getenv("REELIST_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Environment wins over the settings file for secrets
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		settings.Metadata.TMDBAPIKey = key
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	accountsService := accounts.NewService(db)
	sessionsService := sessions.NewService(db, time.Duration(settings.Session.TTLHours)*time.Hour)
	watchlistsService := watchlists.NewService(db)
	metadataService := metadata.NewService(settings.Metadata.TMDBAPIKey, settings.Metadata.Language)

	sessionsService.StartPurgeLoop(time.Hour)
	defer sessionsService.Stop()

	if settings.Metadata.TMDBAPIKey == "" {
		log.Printf("warning: no TMDB API key configured; title search will be unavailable")
	}

	if *demoMode {
		if err := seedDemoAccount(accountsService, watchlistsService); err != nil {
			log.Fatalf("failed to seed demo account: %v", err)
		}
	}

	authHandler := handlers.NewAuthHandler(accountsService, sessionsService, settings.Session.CookieName, settings.Session.Secure)
	watchlistsHandler := handlers.NewWatchlistsHandler(watchlistsService)
	metadataHandler := handlers.NewMetadataHandler(metadataService)

	r := utils.NewRouter()
	api.Register(
		r,
		authHandler,
		watchlistsHandler,
		metadataHandler,
		handlers.SessionAuth(sessionsService, settings.Session.CookieName),
		settings.CORS.Origin,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// seedDemoAccount creates demo@reelist.dev with a fresh random password and
// a starter watchlist, printing the credentials once.
func seedDemoAccount(accountsService *accounts.Service, watchlistsService *watchlists.Service) error {
	const demoEmail = "demo@reelist.dev"

	ctx := context.Background()

	taken, err := accountsService.EmailTaken(ctx, demoEmail)
	if err != nil {
		return err
	}
	if taken {
		fmt.Printf("🧪 Demo account %s already exists\n", demoEmail)
		return nil
	}

	pw, err := password.Generate(16, 4, 0, false, false)
	if err != nil {
		return fmt.Errorf("generate demo password: %w", err)
	}

	user, err := accountsService.Signup(ctx, models.SignupInput{
		Email:     demoEmail,
		Password:  pw,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		return err
	}

	if _, err := watchlistsService.Create(ctx, user.ID, "Watch later", true); err != nil {
		return err
	}

	fmt.Printf("🧪 Demo account ready: %s / %s\n", demoEmail, pw)
	return nil
}
