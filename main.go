package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"commute-service/internal/db"
	"commute-service/internal/discovery"
	"commute-service/internal/handlers"
	"commute-service/internal/identity"
	"commute-service/internal/middleware"
	"commute-service/internal/observability"
	"commute-service/internal/rabbitmq"
	"commute-service/internal/repositories"
	"commute-service/internal/telemetry"
	"commute-service/internal/ws"
)

const serviceName = "commute-service"

func main() {
	// best-effort: without a .env file the real environment wins
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	database, err := db.Connect(log)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), serviceName, log)
	if err != nil {
		log.Warnf("tracing disabled: %v", err)
	}

	amqpURL := os.Getenv("AMQP_URL")
	exchange := getEnv("AMQP_EXCHANGE", "commute.events")
	if amqpURL != "" {
		if eventPub, err := observability.NewAMQPPublisher(amqpURL, exchange); err != nil {
			log.Warnf("event publisher unavailable: %v", err)
		} else {
			observability.SetPublisher(eventPub)
			defer eventPub.Close()
		}
	}

	auditPub := rabbitmq.NewPublisher(amqpURL, exchange, log)
	defer auditPub.Close()
	log.Infof("audit publisher mode: %s", rabbitmq.PublisherMode(auditPub))
	emitter := telemetry.NewAuditEmitter(auditPub, getEnv("AUDIT_ROUTING_KEY", "audit."+serviceName),
		serviceName, getEnv("ENVIRONMENT", "dev"), log)

	userRepo := repositories.NewUserRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	connectionRepo := repositories.NewConnectionRepo(database)
	waveRepo := repositories.NewWaveRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	tripRepo := repositories.NewTripRepo(database)

	engine := discovery.NewEngine(profileRepo, tripRepo, connectionRepo, waveRepo,
		getDuration("WAVE_COOLDOWN", discovery.DefaultWaveCooldown))

	provider := identity.NewClient(getEnv("IDENTITY_PROVIDER_URL", "http://localhost:8084"),
		getDuration("IDENTITY_TIMEOUT", 10*time.Second))

	hub := ws.NewHub(log)
	notifyWS := ws.NewNotificationSocketHandler(hub, userRepo)

	authHandler := handlers.NewAuthHandler(userRepo, provider, getDuration("SESSION_TTL", handlers.DefaultSessionTTL), emitter)
	profileHandler := handlers.NewProfileHandler(profileRepo, engine, emitter)
	discoverHandler := handlers.NewDiscoverHandler(engine)
	waveHandler := handlers.NewWaveHandler(engine, waveRepo, hub)
	connectionHandler := handlers.NewConnectionHandler(connectionRepo, engine, hub, emitter,
		getBool("CONNECTION_REREQUEST_AFTER_REJECT", true))
	tripHandler := handlers.NewTripHandler(tripRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, connectionRepo, engine, hub)
	stationHandler := handlers.NewStationHandler()
	healthHandler := handlers.NewHealthHandler(database)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/stations", stationHandler.List)

	router.POST("/auth/session", authHandler.CreateSession)

	authMiddleware := middleware.AuthMiddleware(userRepo)

	router.GET("/auth/me", authMiddleware, authHandler.Me)
	router.POST("/auth/logout", authMiddleware, authHandler.Logout)

	router.GET("/profile", authMiddleware, profileHandler.GetMine)
	router.POST("/profile", authMiddleware, profileHandler.Upsert)
	router.GET("/profile/:userId", authMiddleware, profileHandler.GetByID)

	router.GET("/discover", authMiddleware, discoverHandler.Discover)

	router.POST("/waves", authMiddleware, waveHandler.Send)
	router.GET("/waves", authMiddleware, waveHandler.List)

	router.POST("/connections", authMiddleware, connectionHandler.Request)
	router.PUT("/connections/:id", authMiddleware, connectionHandler.Respond)
	router.GET("/connections", authMiddleware, connectionHandler.ListAccepted)
	router.GET("/connections/pending", authMiddleware, connectionHandler.ListPending)

	router.POST("/trips", authMiddleware, tripHandler.Start)
	router.PUT("/trips/:id", authMiddleware, tripHandler.Update)
	router.GET("/trips", authMiddleware, tripHandler.List)

	router.POST("/messages", authMiddleware, messageHandler.Send)
	router.GET("/messages", authMiddleware, messageHandler.Summaries)
	router.GET("/messages/:userId", authMiddleware, messageHandler.Thread)

	router.GET("/ws/notifications", notifyWS.Handle)

	handlers.RegisterDebugRoutes(router, emitter, hub, getBool("DEBUG_ROUTES", false))

	srv := &http.Server{
		Addr:    ":" + getEnv("PORT", "8086"),
		Handler: router,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		log.Warnf("http server shutdown failed: %v", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(doneCtx); err != nil {
			log.Warnf("tracing shutdown failed: %v", err)
		}
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
