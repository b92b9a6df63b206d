// Package server wires the portal gateway: session stores, route guards,
// the dashboard dispatcher and the thin page handlers over the backend API.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/config"
	"github.com/medverse/portal/internal/dispatch"
	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/models"
	"github.com/medverse/portal/internal/routes"
	"github.com/medverse/portal/internal/session"
)

// ephemeralTTL bounds session-only logins; it mirrors how long an idle
// browser tab keeps its session storage alive for our purposes.
const ephemeralTTL = 12 * time.Hour

// Server represents the portal gateway HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	table     *routes.Table
	store     *session.Store
	provider  *session.Provider
	client    *backend.Client
	sweeper   *session.Sweeper
	redis     *session.RedisBackend // nil unless configured
	version   string
}

// New creates a new gateway instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Role->path table: built-in defaults, overridable from a YAML file.
	table := routes.Default()
	if cfg.Server.RoutesFile != "" {
		table, err = routes.LoadFile(cfg.Server.RoutesFile)
		if err != nil {
			return nil, err
		}
		zlog.Info().Str("file", cfg.Server.RoutesFile).Msg("Loaded routes table")
	}

	durable, err := session.NewDurable(db, cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	// Ephemeral store: in-process by default, Redis when replicas must
	// share session-only logins.
	var ephemeral session.Backend
	var memory *session.MemoryBackend
	var redisBackend *session.RedisBackend
	if cfg.Session.RedisAddress != "" {
		redisBackend, err = session.NewRedis(context.Background(), cfg.Session.RedisAddress, ephemeralTTL)
		if err != nil {
			return nil, err
		}
		ephemeral = redisBackend
		zlog.Info().Str("address", cfg.Session.RedisAddress).Msg("Using Redis ephemeral session store")
	} else {
		memory = session.NewMemory(ephemeralTTL)
		ephemeral = memory
	}

	store := session.NewStore(durable, ephemeral, zlog)
	provider := session.NewProvider(store, table, zlog)

	client := backend.New(cfg.Backend.BaseURL, zlog,
		backend.WithTokenSource(storeTokenSource{store: store}),
		backend.WithSessionEvictor(storeEvictor{store: store, log: zlog}),
		backend.WithLoginPath(table.Login),
	)

	sweeper := session.NewSweeper(memory, durable, zlog)

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: validator.New(),
		table:     table,
		store:     store,
		provider:  provider,
		client:    client,
		sweeper:   sweeper,
		redis:     redisBackend,
		version:   version,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase opens the SQLite file backing the durable session store.
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Session.DatabasePath), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				LogLevel:                  gormlogger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL first for concurrency, then the rest.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Every route below works against loaded session state.
	s.router.Use(s.visitorMiddleware())
	s.router.Use(guard.LoadSession(s.provider))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Entry pages and portal auth operations
	s.router.GET(s.table.Login, s.loginPage)
	s.router.GET(s.table.AuthSelect, s.authSelectPage)
	s.router.POST("/portal/login", s.login)
	s.router.POST("/portal/signup", s.signup)
	s.router.POST("/portal/logout", s.logout)
	s.router.POST("/portal/switch-role", s.switchRole)
	s.router.GET("/portal/session", s.currentSession)

	// Public directory, gated only for first-time visitors
	public := s.router.Group("/", guard.InitialGate(s.table))
	{
		public.GET("/hospitals", s.listHospitals)
		public.GET("/doctors", s.listDoctors)
	}

	// Role dashboards
	s.router.GET(s.table.Dashboard, dispatch.Handler(s.table))
	s.router.GET(s.table.DashboardFor(models.RolePatient),
		guard.RequireAuth(s.table), s.patientDashboard)
	s.router.GET(s.table.DashboardFor(models.RoleDoctor),
		guard.RequireRoles(s.table, []string{models.RoleDoctor}, ""), s.doctorDashboard)
	s.router.GET(s.table.DashboardFor(models.RoleStaff),
		guard.RequireRoles(s.table, []string{models.RoleStaff, models.RoleAdmin}, ""), s.staffDashboard)
	s.router.GET(s.table.DashboardFor(models.RoleAdmin),
		guard.RequireRoles(s.table, []string{models.RoleAdmin}, ""), s.adminDashboard)

	// Patient pages (any logged-in visitor)
	patient := s.router.Group("/", guard.RequireAuth(s.table))
	{
		patient.GET("/appointments", s.listAppointments)
		patient.POST("/appointments", s.bookAppointment)
		patient.GET("/medical-records", s.listMedicalRecords)
		patient.GET("/privilege-card", s.getPrivilegeCard)
		patient.POST("/privilege-card", s.applyPrivilegeCard)
	}

	// Doctor pages
	doctor := s.router.Group("/doctor",
		guard.RequireRoles(s.table, []string{models.RoleDoctor}, ""))
	{
		doctor.GET("/availability", s.getDoctorAvailability)
		doctor.PUT("/availability", s.setDoctorAvailability)
		doctor.GET("/appointments", s.listDoctorAppointments)
		doctor.GET("/profile", s.getDoctorProfile)
		doctor.PUT("/profile", s.updateDoctorProfile)
		doctor.POST("/register", s.registerDoctor)
	}

	// Admin pages
	admin := s.router.Group("/admin",
		guard.RequireRoles(s.table, []string{models.RoleAdmin}, ""))
	{
		admin.GET("/users", s.adminListUsers)
		admin.GET("/users/:id", s.adminGetUser)
		admin.PUT("/users/:id", s.adminUpdateUser)
		admin.DELETE("/users/:id", s.adminDeleteUser)
		admin.GET("/appointments", s.adminListAppointments)
		admin.PATCH("/appointments/:id/cancel", s.adminCancelAppointment)
		admin.PATCH("/appointments/:id/reschedule", s.adminRescheduleAppointment)
		admin.GET("/appointments/export", s.adminExportAppointments)
		admin.GET("/audits", s.adminListAudits)
		admin.GET("/feedback", s.adminListFeedback)
	}
}

// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "medverse-portal",
	})
}

// GetDB returns the database connection, for tests.
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router returns the configured router, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	if err := s.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}

	go func() {
		s.logger.Info().Str("addr", s.config.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	s.sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing Redis connection")
		}
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")

	return nil
}
