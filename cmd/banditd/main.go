// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/banditlabs/banditd/pkg/logging"
	"github.com/banditlabs/banditd/services/bandit/config"
	"github.com/banditlabs/banditd/services/bandit/registry"
	"github.com/banditlabs/banditd/services/bandit/routes"
	"github.com/banditlabs/banditd/services/bandit/storage/badgerstore"
)

// initTracer wires OTLP trace export over gRPC. Returns a shutdown
// func the caller must invoke on exit.
func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("banditd")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			log.Printf("failed to shutdown OTLP exporter: %v", err)
		}
	}, nil
}

func main() {
	configPath := flag.String("config", "", "path to banditd YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: "banditd",
		JSON:    true,
	})
	defer logger.Close()

	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("FATAL: failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	}

	storeCfg := badgerstore.DefaultConfig(cfg.StorageDir)
	if cfg.InMemory {
		storeCfg = badgerstore.InMemoryConfig()
	}
	storeCfg.SyncWrites = cfg.SyncWrites

	// A store that cannot open is the one failure worth dying for.
	store, err := badgerstore.Open(storeCfg, logger.Slog())
	if err != nil {
		log.Fatalf("FATAL: could not open experiment store: %v", err)
	}
	defer store.Close()

	reg := registry.New(store, logger.Slog())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loaded, err := reg.LoadAll(ctx)
	if err != nil {
		log.Fatalf("FATAL: could not recover experiments: %v", err)
	}
	logger.Info("experiments recovered", "count", loaded)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTLPEndpoint != "" {
		router.Use(otelgin.Middleware("banditd"))
	}
	routes.SetupRoutes(router, reg)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info("banditd listening", "addr", cfg.Addr(), "storage", cfg.StorageDir, "in_memory", cfg.InMemory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
