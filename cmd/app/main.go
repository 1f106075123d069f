package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/booking"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/classroom"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/config"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/db"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/email"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/gateway"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/payment"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/schedule"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/server"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/session"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/user"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/wallet"
)

// payoutContacts resolves the instructor behind a wallet for payout emails.
type payoutContacts struct {
	wallets wallet.Repository
	users   user.Repository
}

func (p payoutContacts) ContactForWallet(ctx context.Context, walletID int) (string, string, error) {
	w, err := p.wallets.GetByID(ctx, walletID)
	if err != nil {
		return "", "", err
	}
	u, err := p.users.FindByID(ctx, w.InstructorID)
	if err != nil {
		return "", "", err
	}
	return u.Email, u.Name, nil
}

// @title Tutorly API
// @version 1.0
// @description API for the Tutorly lesson booking platform.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting Tutorly application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	trialPrice, err := money.NewFromString(cfg.TrialLessonPrice, cfg.DefaultCurrency)
	if err != nil {
		logger.Fatalf("Invalid trial lesson price: %v", err)
	}

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	logger.Info("Email service initialized")

	runner := db.NewRunner(database)
	paymentRepo := payment.NewRepository(database)
	slotRepo := schedule.NewRepository(database)
	sessionRepo := session.NewRepository(database)
	userRepo := user.NewRepository(database)
	walletRepo := wallet.NewRepository(database)
	roomRepo := classroom.NewRepository(database)

	gw := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.EmailFromName)
	provider := classroom.NewDaily(cfg.DailyAPIKey, cfg.DailyDomain)

	walletService := wallet.NewService(walletRepo, runner)
	userService := user.NewService(userRepo, walletService, cfg.JWTSecret)
	classroomService := classroom.NewService(roomRepo, provider, sessionRepo, userRepo)
	bookingService := booking.NewService(
		paymentRepo,
		slotRepo,
		sessionRepo,
		userRepo,
		walletRepo,
		gw,
		classroomService,
		emailService,
		runner,
		trialPrice,
	)

	handlers := server.Handlers{
		User:      user.NewHandler(userService, cfg.DefaultCurrency),
		Schedule:  schedule.NewHandler(database),
		Session:   session.NewHandler(database),
		Booking:   booking.NewHandler(bookingService),
		Wallet:    wallet.NewHandler(walletService, payoutContacts{wallets: walletRepo, users: userRepo}, emailService),
		Classroom: classroom.NewHandler(classroomService),
		Email:     emailService,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go emailService.Start(ctx)
	go payment.NewSweeper(paymentRepo, cfg.PaymentSweepInterval, cfg.PaymentStaleAfter).Start(ctx)
	go classroom.NewExpirer(classroomService, cfg.PaymentSweepInterval).Start(ctx)

	srv := server.New(database, cfg, handlers)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
