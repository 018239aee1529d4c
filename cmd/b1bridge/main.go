package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"b1bridge/config"
	"b1bridge/diapi"
	"b1bridge/logging"
	"b1bridge/messaging"
	"b1bridge/orders"
	"b1bridge/store"
	"b1bridge/www"
)

func main() {
	configPath := flag.String("config", "b1bridge.yaml", "path to config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *port > 0 {
		cfg.Web.Port = *port
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	// Open the company database pool. Connections are checked out per request.
	db, err := store.Open(cfg.Database, cfg.SAP.CompanyDB)
	if err != nil {
		logger.Fatalw("open database", "error", err)
	}
	defer db.Close()

	// Set up messaging. The bridge stays up without a broker; sync events are
	// then simply not published.
	var emitter orders.EventEmitter = orders.NopEmitter{}
	if cfg.Messaging.Enabled {
		msgClient := messaging.NewClient(&cfg.Messaging)
		defer msgClient.Close()
		if err := msgClient.Connect(); err != nil {
			logger.Warnw("messaging connect failed, sync events disabled", "error", err)
		} else {
			emitter = messaging.NewReporter(msgClient, cfg.Messaging.SyncTopic, logger)
			logger.Infow("messaging connected", "backend", cfg.Messaging.Backend, "topic", cfg.Messaging.SyncTopic)
		}
	}

	manager := orders.NewManager(logger, emitter)
	router := www.NewRouter(cfg, *configPath, db, diapi.Dial, manager, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Infow("b1bridge listening", "addr", addr, "company_db", cfg.SAP.CompanyDB)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("http server", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infow("shutting down")

	// Graceful HTTP shutdown with 10s deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("http server shutdown", "error", err)
	}
}
