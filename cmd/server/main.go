package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/broker"
	"github.com/iliyamo/restaurant-seating/internal/config"
	"github.com/iliyamo/restaurant-seating/internal/database"
	"github.com/iliyamo/restaurant-seating/internal/events"
	"github.com/iliyamo/restaurant-seating/internal/handler"
	"github.com/iliyamo/restaurant-seating/internal/identity"
	"github.com/iliyamo/restaurant-seating/internal/notifications"
	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/router"
	"github.com/iliyamo/restaurant-seating/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unavailable; caching degrades to pass-through
	bus := broker.New(cfg.BrokerURL)

	// Stores. The seating repo emits change records onto the broker-backed
	// stream, which the stream worker below translates into domain events.
	changeStream := events.NewBrokerChangeStream(bus)
	users := repository.NewUserRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	seatings := repository.NewSeatingRepo(db, changeStream)
	tokens := repository.NewTokenRepo(db)
	ids := identity.NewStore(db)

	// Services and event plumbing.
	publisher := events.NewPublisher(bus)
	seatingSvc := service.NewSeatingService(seatings)
	restaurantSvc := service.NewRestaurantService(restaurants, service.NewAssociationSyncer(ids, users))
	queuer := notifications.NewQueuer(bus)
	notifier := events.NewNotifier(users, restaurants, queuer, cfg.EmailFrom)
	streamProc := events.NewStreamProcessor(publisher)
	userConsumer := events.NewUserConsumer(users)

	// Background consumers. Each loop reconnects on broker failure and exits
	// when the context is cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runWorker(ctx, "stream-worker", func() error { return streamProc.RunStreamWorker(ctx, bus) })
	go runWorker(ctx, "notify-created", func() error { return notifier.RunCreatedConsumer(ctx, bus) })
	go runWorker(ctx, "notify-cancelled", func() error { return notifier.RunCancelledConsumer(ctx, bus) })
	go runWorker(ctx, "process-new-user", func() error { return userConsumer.Run(ctx, bus) })
	if cfg.SMTPAddr != "" {
		deliver := notifications.NewDeliverWorker(&notifications.SMTPSender{Addr: cfg.SMTPAddr})
		go runWorker(ctx, "deliver-worker", func() error { return deliver.Run(ctx, bus) })
	} else {
		log.Printf("SMTP_ADDR not set; outbound email delivery disabled, requests stay queued")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(
		ids, tokens, publisher,
		cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost,
	), cfg.JWTSecret)
	router.RegisterRestaurants(e,
		handler.NewRestaurantHandler(restaurantSvc),
		handler.NewSeatingHandler(seatingSvc),
		cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func runWorker(ctx context.Context, name string, run func() error) {
	if err := run(); err != nil && ctx.Err() == nil {
		log.Printf("%s exited: %v", name, err)
	}
}
