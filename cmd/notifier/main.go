package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/catrink-storefront/internal/config"
	kafkax "github.com/ariefcatur/catrink-storefront/internal/kafka"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/logging"
	"github.com/ariefcatur/catrink-storefront/internal/notify"
	"github.com/ariefcatur/catrink-storefront/internal/orders"
	"github.com/ariefcatur/catrink-storefront/internal/redisx"
	"github.com/joho/godotenv"
)

// notifier drains order.notification and relays each order email once.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logging.Init(cfg.ServiceName+"-notifier", cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dedup kv.Store
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis connect", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		dedup = redisx.NewStore(rdb, "")
	} else {
		log.Warn("redis_addr empty, dedup is per-process only")
		dedup = kv.NewMemory()
	}

	relay := &notify.Relay{
		Dedup:   dedup,
		Next:    notify.NewEmailRelay(cfg.Notify.Endpoint, cfg.Notify.ServiceID, cfg.Notify.PublicKey),
		Service: cfg.ServiceName + "-notifier",
		Log:     logging.New("notify.relay"),
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.Notify.Group, orders.TopicNotification, cfg.Notify.Workers)
	log.Info("notifier consumer started", "group", cfg.Notify.Group, "topic", orders.TopicNotification, "workers", cfg.Notify.Workers)
	if err := cons.Start(ctx, relay.HandleOrderPlaced); err != nil {
		log.Error("consumer exit", "err", err)
		os.Exit(1)
	}
	log.Info("notifier stopped")
}
