package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Jvargast/newsletter-fisuc/api"
	"github.com/Jvargast/newsletter-fisuc/delivery"
	"github.com/Jvargast/newsletter-fisuc/pipeline"
	rh "github.com/Jvargast/newsletter-fisuc/route-handlers"
	"github.com/Jvargast/newsletter-fisuc/storage"
)

const shutdownTimeout = 15 * time.Second

type config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	SMTPHost  string `env:"SMTP_HOST"`
	SMTPPort  int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
	FromName  string `env:"FROM_NAME" envDefault:"Newsletter"`
	FromEmail string `env:"FROM_EMAIL"`
	TestTo    string `env:"TEST_TO"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"public/uploads"`
}

func main() {
	cfg := loadConfig()

	store, err := storage.NewMediaStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Media store setup failed: %v", err)
	}

	builder, err := pipeline.NewBuilder()
	if err != nil {
		log.Fatalf("Build pipeline setup failed: %v", err)
	}

	mailer := delivery.NewSMTPMailer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.FromName,
		cfg.FromEmail,
	)

	newsletterHandler := rh.NewNewsletterHandler(builder, mailer, store, cfg.TestTo)
	mediaHandler := rh.NewMediaHandler(store)

	router := api.SetupRoutes(newsletterHandler, mediaHandler, store.Dir())

	startServer(strconv.Itoa(cfg.Port), router)
}

func loadConfig() config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Config parsing failed: %v", err)
	}

	if cfg.SMTPHost == "" {
		log.Println("WARNING: SMTP_HOST not set. Test sends will fail at runtime.")
	}
	if cfg.FromEmail == "" {
		log.Println("WARNING: FROM_EMAIL not set. Test sends will fail at runtime.")
	}

	return cfg
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
