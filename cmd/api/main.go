package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/auth"
	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/ariefcatur/catrink-storefront/internal/chatbot"
	"github.com/ariefcatur/catrink-storefront/internal/checkout"
	"github.com/ariefcatur/catrink-storefront/internal/config"
	"github.com/ariefcatur/catrink-storefront/internal/coupons"
	"github.com/ariefcatur/catrink-storefront/internal/httpx"
	"github.com/ariefcatur/catrink-storefront/internal/identity"
	kafkax "github.com/ariefcatur/catrink-storefront/internal/kafka"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/logging"
	"github.com/ariefcatur/catrink-storefront/internal/notify"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/postgres"
	"github.com/ariefcatur/catrink-storefront/internal/profile"
	"github.com/ariefcatur/catrink-storefront/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.Init(cfg.ServiceName, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// KV: redis kalau ada, selain itu in-memory
	var store kv.Store = kv.NewMemory()
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = redisx.NewStore(rdb, "")
	}

	// Orders: postgres kalau ada DSN
	var orderStore orders.Store = orders.NewMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("db migrate", "err", err)
			os.Exit(1)
		}
		orderStore = &orders.Repo{DB: db}
	}

	cat := catalog.NewStore(store)
	cs := coupons.NewStore(store)
	if err := cat.Seed(ctx); err != nil {
		log.Error("seed catalog", "err", err)
		os.Exit(1)
	}
	if err := cs.Seed(ctx); err != nil {
		log.Error("seed coupons", "err", err)
		os.Exit(1)
	}

	var provider identity.Provider = identity.NewMemory()
	if cfg.Auth.FirebaseAPIKey != "" {
		provider = identity.NewFirebase(cfg.Auth.FirebaseAPIKey)
	}
	gate := auth.NewGate(auth.NewBcryptAdmin(cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash), provider, store, cfg.Auth.SessionTTL)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.ServiceName, cfg.Auth.SessionTTL)

	var (
		notifier notify.Notifier
		prod     *kafkax.Producer
	)
	switch cfg.Notify.Mode {
	case "email":
		notifier = notify.NewEmailRelay(cfg.Notify.Endpoint, cfg.Notify.ServiceID, cfg.Notify.PublicKey)
	case "kafka":
		prod = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicNotification, 1024)
		prod.Start(ctx)
		notifier = &notify.KafkaNotifier{Producer: prod, Service: cfg.ServiceName}
	default:
		notifier = &notify.LogNotifier{Log: logging.New("notify")}
	}

	svc := checkout.NewService(cat, cs, orderStore, store, checkout.SimulatedPayments{Delay: cfg.Checkout.PaymentDelay}, notifier, checkout.Options{
		OperatorEmail: cfg.Checkout.OperatorEmail,
		TemplateID:    cfg.Notify.TemplateID,
		InFlightTTL:   cfg.Checkout.InFlightTTL,
		ReplayTTL:     cfg.Checkout.ReplayTTL,
	})

	router := httpx.NewServer(httpx.Deps{
		Catalog:  cat,
		Coupons:  cs,
		Orders:   orderStore,
		Checkout: svc,
		Gate:     gate,
		Tokens:   tokens,
		Profiles: profile.NewStore(store),
		Bot:      chatbot.New(),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr, "notify", cfg.Notify.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Error("server exit", "err", err)
	}

	svc.Wait() // notifikasi yang masih jalan
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
}
