package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"library-system/config"
	"library-system/internal/handlers"
	"library-system/internal/services"
	"library-system/internal/services/gateway"
	"library-system/internal/store"
	"library-system/monitoring"
	"library-system/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	_ "library-system/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the payment gateway
	paymentGateway := gateway.NewSimulator(&gateway.SimulatorConfig{
		MaxAmount: cfg.PaymentMaxAmount,
		Latency:   cfg.GatewayLatency,
	})

	// Initialize stores
	bookStore := store.NewBookStore(app)
	borrowStore := store.NewBorrowStore(app)
	patronStore := store.NewPatronStore(app)

	// Initialize services
	catalogService := services.NewCatalogService(bookStore)
	circulationService := services.NewCirculationService(bookStore, borrowStore, cfg)
	paymentService := services.NewPaymentService(
		redisClient,
		paymentGateway,
		circulationService,
		catalogService,
		services.NewPubNubPublisher(pn),
		cfg,
	)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(app, catalogService)
	circulationHandler := handlers.NewCirculationHandler(app, circulationService)
	paymentHandler := handlers.NewPaymentHandler(app, paymentService)
	patronHandler := handlers.NewPatronHandler(app, patronStore, cfg.PatronIDLength)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start metrics collection
	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go serveMetrics(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel, paymentGateway)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Catalog endpoints
		e.Router.POST("/api/v1/books", catalogHandler.AddBook)
		e.Router.GET("/api/v1/books/search", catalogHandler.SearchBooks)
		e.Router.GET("/api/v1/books/{bookId}", catalogHandler.GetBook)

		// Circulation endpoints
		e.Router.POST("/api/v1/borrow", circulationHandler.BorrowBook)
		e.Router.POST("/api/v1/return", circulationHandler.ReturnBook)
		e.Router.GET("/api/v1/patrons/{patronId}/fees/{bookId}", circulationHandler.GetLateFee)
		e.Router.GET("/api/v1/patrons/{patronId}/status", circulationHandler.GetPatronStatus)

		// Payment endpoints
		e.Router.POST("/api/v1/payments/late-fees", paymentHandler.PayLateFees)
		e.Router.POST("/api/v1/payments/refund", paymentHandler.RefundLateFeePayment)
		e.Router.GET("/api/v1/payments/{transactionId}", paymentHandler.GetPaymentDetails)
		e.Router.GET("/api/v1/payments/{transactionId}/verify", paymentHandler.VerifyPaymentStatus)

		// Test endpoint for payment simulation
		if cfg.Environment == "development" {
			e.Router.POST("/api/v1/test/simulate-payment", paymentHandler.SimulatePayment)
		}

		// Patron endpoints
		e.Router.POST("/api/v1/patrons", patronHandler.RegisterPatron)
		e.Router.GET("/api/v1/patrons/{cardNo}", patronHandler.GetPatron)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc, gw gateway.PaymentGateway) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	if err := gw.Close(context.Background()); err != nil {
		slog.Error("closing payment gateway", "error", err)
	}
	cancel()
}
