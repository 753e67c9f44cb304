package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/cashier-desk/audit"
	"github.com/yeremiapane/cashier-desk/backend"
	"github.com/yeremiapane/cashier-desk/config"
	"github.com/yeremiapane/cashier-desk/database"
	"github.com/yeremiapane/cashier-desk/hub"
	"github.com/yeremiapane/cashier-desk/middlewares"
	"github.com/yeremiapane/cashier-desk/printer"
	"github.com/yeremiapane/cashier-desk/router"
	"github.com/yeremiapane/cashier-desk/services"
	"github.com/yeremiapane/cashier-desk/utils"
)

func main() {
	envErr := godotenv.Load()
	utils.InitLogger()
	if envErr != nil {
		utils.InfoLogger.Info("No .env file, using the environment")
	}
	cfg := config.Load()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open preference database: %v", err)
	}
	prefs := database.NewPreferenceStore(db)
	if err := prefs.Migrate(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	// A server url saved from the settings screen wins over the environment.
	backendURL, wsURL := cfg.BackendURL, cfg.BackendWSURL
	if saved := prefs.ServerURL(); saved != "" {
		backendURL, wsURL = saved, config.WSURLFor(saved)
	}
	client := backend.NewClient(backendURL, cfg.RequestTimeout)
	if session, ok := prefs.Session(); ok {
		client.SetToken(session.Token)
	}

	agent := printer.NewAgent(cfg.AgentURL, cfg.RequestTimeout)
	uiHub := hub.New(middlewares.OriginAllowed(cfg.CORSAllowedOrigin))
	state := services.NewDashboardState()

	cashier := services.NewCashierService(client, agent, prefs, state)
	cashier.Hub = uiHub
	client.OnUnauthorized = cashier.HandleUnauthorized

	publisher, err := audit.New(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	switch {
	case err != nil:
		utils.ErrorLogger.WithError(err).Error("Audit publisher unavailable, continuing without it")
	case publisher != nil:
		cashier.Audit = publisher
		defer publisher.Close()
	default:
		utils.InfoLogger.Info("Audit publisher disabled (RABBITMQ_URL is empty)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	realtime := backend.NewRealtime(wsURL, cfg.ReconnectDelay)
	realtime.Token = client.Token
	realtime.RestaurantID = func() string {
		if session, ok := cashier.Session(); ok {
			return session.Restaurant.ID
		}
		return ""
	}
	go realtime.Run(ctx)

	reconciler := services.NewReconciler(client, state, uiHub, services.NewPrintDeduper(cfg.PrintDedupeWindow))
	reconciler.Bills = cashier
	reconciler.Timeout = cfg.RequestTimeout
	cashier.Reloader = reconciler
	reconciler.Start(ctx, realtime.Events())
	defer reconciler.Stop()

	ticker := services.NewTotalsTicker(state, uiHub)
	ticker.Interval = cfg.TickInterval
	ticker.Start()
	defer ticker.Stop()

	r := router.SetupRouter(router.Deps{
		Cashier:          cashier,
		State:            state,
		Hub:              uiHub,
		Settings:         prefs,
		Backend:          client,
		Agent:            agent,
		DefaultServerURL: cfg.BackendURL,
		AllowedOrigin:    cfg.CORSAllowedOrigin,
		AllowedRoles:     cfg.AllowedRoles,
		PayRateLimit:     cfg.PayRateLimit,
		PayRateBurst:     cfg.PayRateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	utils.InfoLogger.Info("Shutting down")

	uiHub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.WithError(err).Error("HTTP server shutdown failed")
	}
	cancel()
}
