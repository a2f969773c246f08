package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sigmart/go-order-fulfillment.git/internal/config"
	"github.com/sigmart/go-order-fulfillment.git/internal/geo"
	"github.com/sigmart/go-order-fulfillment.git/internal/httpx"
	"github.com/sigmart/go-order-fulfillment.git/internal/inventory"
	kafkax "github.com/sigmart/go-order-fulfillment.git/internal/kafka"
	"github.com/sigmart/go-order-fulfillment.git/internal/orders"
	"github.com/sigmart/go-order-fulfillment.git/internal/postgres"
	"github.com/sigmart/go-order-fulfillment.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer (topic per message)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Store, coordinator & handler
	store := &postgres.Store{Pool: db}
	coord := &orders.Coordinator{Store: store, Ledger: &inventory.Ledger{}}
	router := httpx.NewRouter()
	fh := &httpx.FulfillmentHandler{
		Store:     store,
		Coord:     coord,
		Directory: &geo.Directory{DB: db},
		Producer:  prod,
		Redis:     rdb,
		Service:   cfg.ServiceName,
	}
	fh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
