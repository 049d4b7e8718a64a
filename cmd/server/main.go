package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"fleet-rescue-service/internal/adapters/cache"
	"fleet-rescue-service/internal/adapters/distance"
	"fleet-rescue-service/internal/adapters/events"
	"fleet-rescue-service/internal/adapters/repositories"
	"fleet-rescue-service/internal/api"
	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/platform/db"
	"fleet-rescue-service/internal/ports"
	"fleet-rescue-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, ORS, RabbitMQ) behind ports, loads the fleet,
// starts the telemetry monitor, and serves HTTP.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL, config.GetInt("DB_MAX_CONNS", 10))
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	// Schema init and seeding on startup keep local runs one-command;
	// production deployments run cmd/dbtool instead.
	if err := repositories.InitSchema(sqlDB); err != nil {
		log.Fatal(err)
	}
	if seedPath := os.Getenv("SEED_PATH"); seedPath != "" {
		if err := repositories.SeedFromJSON(sqlDB, seedPath); err != nil {
			log.Fatal(err)
		}
	}

	// Distance lookups cache in Redis when configured, Postgres otherwise.
	var distanceCache ports.DistanceCache = cache.NewPGDistanceCache(sqlDB)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		distanceCache = cache.NewRedisDistanceCache(client, config.GetDuration("REDIS_TTL", 24*time.Hour))
		log.Printf("distance cache backend=redis addr=%s", addr)
	}

	estimate := distance.NewGeodesicEstimator(
		config.GetFloat("AVG_SPEED_KMH", 40),
		config.GetFloat("ROAD_FACTOR", 1.3),
	)

	// Without an ORS key every pair is served by the geodesic estimate;
	// with one, the estimate remains the per-pair fallback.
	var provider ports.DistanceProvider = estimate
	if orsKey := strings.TrimSpace(os.Getenv("ORS_API_KEY")); orsKey != "" {
		ors, err := distance.NewORSProvider(orsKey, distanceCache)
		if err != nil {
			log.Fatal(err)
		}
		provider = distance.NewFallbackProvider(ors, estimate, config.GetDuration("DISTANCE_TIMEOUT", 5*time.Second))
	} else {
		log.Println("ORS_API_KEY not set; using geodesic estimates for all pairs")
	}
	provider = distance.NewMemoProvider(provider)

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if rabbitURL := os.Getenv("RABBIT_URL"); rabbitURL != "" {
		rp, err := events.DialRabbit(rabbitURL, config.Get("RABBIT_EXCHANGE", "fleet.events"))
		if err != nil {
			log.Fatal(err)
		}
		defer rp.Close()
		publisher = rp
		log.Printf("event publisher backend=rabbitmq")
	}

	ctx := context.Background()

	repo := repositories.NewPGFleetRepository(sqlDB)
	trucks, err := repo.ListTrucks(ctx)
	if err != nil {
		log.Fatal(err)
	}
	deliveries, err := repo.ListDeliveries(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("fleet loaded trucks=%d deliveries=%d", len(trucks), len(deliveries))

	state := services.NewFleetState()
	state.LoadFleet(trucks, deliveries)

	policy := config.ETAPolicy{
		ServiceTime:       config.GetDuration("SERVICE_TIME", 5*time.Minute),
		WaitForWindowOpen: true,
	}
	builder := services.NewRouteBuilder(services.RouteBuilderConfig{
		Budget: config.OptimizerBudgetFromEnv(),
		Policy: policy,
	})
	etaEngine := services.NewETAEngine(policy)
	planner := services.NewPlanner(provider, builder, etaEngine)

	scorer := services.NewRescueScorer(config.ScoringWeightsFromEnv(), config.FailureThresholdsFromEnv())
	engine := services.NewReassignmentEngine(scorer, policy)

	monitor := services.NewMonitor(
		state,
		config.FailureThresholdsFromEnv(),
		engine,
		etaEngine,
		services.NewProviderResolver(ctx, provider),
		publisher,
	)
	monitor.Interval = config.GetDuration("MONITOR_INTERVAL", 10*time.Second)
	go monitor.Run(ctx)

	router := api.NewRouter(state, planner, monitor)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
