package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/dmoura/gestao-escolar/internal/aluno"
	"github.com/dmoura/gestao-escolar/internal/api"
	"github.com/dmoura/gestao-escolar/internal/auth"
	"github.com/dmoura/gestao-escolar/internal/config"
	"github.com/dmoura/gestao-escolar/internal/health"
	"github.com/dmoura/gestao-escolar/internal/logger"
	"github.com/dmoura/gestao-escolar/internal/metrics"
	appmw "github.com/dmoura/gestao-escolar/internal/middleware"
	"github.com/dmoura/gestao-escolar/internal/repository"
	"github.com/dmoura/gestao-escolar/internal/stats"
	"github.com/dmoura/gestao-escolar/internal/turma"
	"github.com/dmoura/gestao-escolar/internal/usuario"
)

// Version is set at build time
var Version = "dev"

func main() {
	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.New(logger.DefaultConfig())

	if cfg.UsedDevSecret() {
		appLogger.Warn("JWT_SECRET não configurado, usando segredo de desenvolvimento",
			"env", cfg.Env)
	}

	// Setup database connections: pgx pool for the write path, sqlx handle
	// for the statistics read model.
	dbPool, err := setupDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	sqlxDB, err := sqlx.Open("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to open statistics database handle: %v", err)
	}
	sqlxDB.SetMaxOpenConns(10)
	sqlxDB.SetMaxIdleConns(2)
	defer sqlxDB.Close()

	// Initialize repositories
	usuarioRepo := repository.NewUsuarioRepository(dbPool)
	turmaRepo := repository.NewTurmaRepository(dbPool)
	alunoRepo := repository.NewAlunoRepository(dbPool)
	historicoRepo := repository.NewHistoricoLoginRepository(dbPool)
	statsRepo := repository.NewStatsRepository(sqlxDB)

	// Initialize services
	tokenService := auth.NewTokenService(auth.TokenServiceConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiry,
		Issuer: cfg.JWT.Issuer,
	})
	authService := auth.NewAuthService(usuarioRepo, historicoRepo, tokenService, appLogger)
	turmaService := turma.NewService(turmaRepo, appLogger)
	alunoService := aluno.NewService(alunoRepo, turmaRepo, appLogger)
	usuarioService := usuario.NewService(usuarioRepo, appLogger)
	statsService := stats.NewService(statsRepo, appLogger)

	// Initialize handlers
	authHandler := auth.NewAuthHandler(authService)
	turmaHandler := turma.NewHandler(turmaService)
	alunoHandler := aluno.NewHandler(alunoService)
	usuarioHandler := usuario.NewHandler(usuarioService)
	statsHandler := stats.NewHandler(statsService)
	healthHandler := health.NewHandler(health.Config{
		DBPool:  dbPool,
		Version: Version,
	})

	// Initialize access guard and role policies
	guard := appmw.NewAccessGuard(tokenService, usuarioRepo, appLogger)
	diretorOnly := guard.RequireCargo(repository.CargoDiretor)
	diretorOuCoordenador := guard.RequireCargo(repository.CargoDiretor, repository.CargoCoordenador)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(appmw.StructuredLogger(appLogger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(metrics.Middleware)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Service info endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Sistema de Gestão Escolar",
			"version": Version,
		})
	})

	// Health and metrics endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Ready)
	r.Get("/health/live", healthHandler.Live)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// API routes
	auth.RegisterRoutes(r, authHandler, guard.Authenticate)
	usuario.RegisterRoutes(r, usuarioHandler, guard.Authenticate, diretorOnly)
	turma.RegisterRoutes(r, turmaHandler, guard.Authenticate, diretorOnly, diretorOuCoordenador)
	aluno.RegisterRoutes(r, alunoHandler, guard.Authenticate, diretorOuCoordenador)
	stats.RegisterRoutes(r, statsHandler, guard.Authenticate)

	// Start the pool stats collector
	dbStats := metrics.NewDBStatsCollector(dbPool, sqlxDB.DB)
	dbStats.Start(15 * time.Second)
	defer dbStats.Stop()

	// Create server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("servidor iniciado", "addr", addr, "env", cfg.Env, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("encerrando servidor")
	healthHandler.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("servidor encerrado")
}

// setupDatabase creates and configures the database connection pool
func setupDatabase(cfg *config.Config, appLogger *slog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("conectado ao banco de dados",
		"database", cfg.Database.DBName,
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
	)
	return pool, nil
}
