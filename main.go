package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"certificados/application/health"
	"certificados/application/orders"
	"certificados/application/tickets"
	"certificados/internal/sheetstore"
	"certificados/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	z := NewLogger()
	defer z.Sync()

	store, err := setupStore(context.Background(), z)
	if err != nil {
		z.Fatal("failed to set up row store", zap.Error(err))
	}

	r := SetupRouter(store, z)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  55 * time.Second,
		WriteTimeout: 55 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		z.Info("🚀 Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			z.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	z.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		z.Warn("shutdown incomplete", zap.Error(err))
	}
}

func NewLogger() *zap.Logger {
	var zapLogger *zap.Logger
	var err error

	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	return zapLogger
}

// setupStore picks the real Google Sheets store when SPREADSHEET_ID is set,
// falling back to a seeded in-memory store for local development.
func setupStore(ctx context.Context, z *zap.Logger) (sheetstore.RowStore, error) {
	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		z.Warn("📦 SPREADSHEET_ID not set, using in-memory store")
		return setupMemoryStore(), nil
	}

	credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	client, err := sheetstore.NewClient(ctx, spreadsheetID, credentialsFile, z)
	if err != nil {
		return nil, err
	}

	z.Info("✅ Google Sheets store connected", zap.String("spreadsheetId", spreadsheetID))
	return client, nil
}

func setupMemoryStore() *sheetstore.Memory {
	m := sheetstore.NewMemory()
	m.Seed(ticketsSheet(), [][]string{
		{"ticket", "status"},
		{"68637750800", ""},
		{"68637750801", ""},
		{"68637750802", ""},
	})
	m.Seed(pedidosSheet(), [][]string{
		{"uuid", "ticket", "numero_oab", "nome_completo", "subsecao", "data_solicitacao", "data_liberacao", "status", "anotacoes"},
	})
	return m
}

func ticketsSheet() string {
	if v := os.Getenv("SHEET_TICKETS"); v != "" {
		return v
	}
	return "tickets"
}

func pedidosSheet() string {
	if v := os.Getenv("SHEET_PEDIDOS"); v != "" {
		return v
	}
	return "pedidos"
}

func SetupRouter(store sheetstore.RowStore, z *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestInit())
	r.Use(middleware.ResponseInit(z))

	rps := 5.0
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rps = parsed
		}
	}
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(rps, int(rps)*2)))

	// Health endpoint (monitors both sheets)
	ticketsHealthRepo := health.NewRepository(store, ticketsSheet())
	pedidosHealthRepo := health.NewRepository(store, pedidosSheet())
	healthSvc := health.NewService(ticketsHealthRepo, pedidosHealthRepo)
	healthHandler := health.NewHandler(healthSvc)

	ticketsSvc := tickets.NewService(store, ticketsSheet(), z)
	ticketsHandler := tickets.NewHandler(ticketsSvc)

	ordersSvc := orders.NewService(store, ticketsSvc, pedidosSheet(), z)
	ordersHandler := orders.NewHandler(ordersSvc)

	// Register routes
	api := r.Group("")
	healthHandler.RegisterRoutes(api)

	authed := api.Group("", middleware.BearerAuth(os.Getenv("API_TOKEN")))

	ticketsGroup := authed.Group("/v1/tickets")
	ticketsHandler.RegisterRoutes(ticketsGroup)

	pedidosGroup := authed.Group("/v1/pedidos")
	ordersHandler.RegisterRoutes(pedidosGroup)

	return r
}
