package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/email"
	grpcAdapter "github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/grpc"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/http/handler"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/http/router"
	natsAdapter "github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/messaging/nats"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/repository/cache"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/repository/mongodb"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/sanitizer"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/adapter/storage/s3"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/usecase"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/metrics"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/tracer"
)

const (
	vehicleMaxImages   = 10
	sparePartMaxImages = 5
	shutdownTimeout    = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and gRPC health server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	if err := mongodb.EnsureIndexes(ctx, db, appLogger); err != nil {
		appLogger.Warn("Index creation failed, continuing", zap.Error(err))
	}

	imageStore, err := s3.NewImageStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
	if err != nil {
		return err
	}
	imageStore.CountDeleteFailures(metricsManager.ImageDeleteFailures)

	htmlSanitizer, err := sanitizer.NewHTMLSanitizer(cfg.SanitizerImagePattern)
	if err != nil {
		return err
	}

	var facetCache domain.FacetCache
	if cfg.RedisAddress != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB, appLogger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		facetCache = cache.NewFacetCache(redisClient, appLogger)
	} else {
		appLogger.Info("REDIS_ADDRESS not set, facet results are not cached")
	}

	g, gctx := errgroup.WithContext(ctx)
	var shared []usecase.Option

	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			return err
		}
		defer publisher.Close()
		shared = append(shared, usecase.WithPublisher(publisher))
	} else {
		appLogger.Info("NATS_URL not set, listing events are not published")
	}

	var notifier *email.SMTPNotifier
	if cfg.SMTPEnabled() {
		notifier, err = email.NewSMTPNotifier(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			To:       cfg.NotifyEmail,
		}, appLogger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			notifier.Run(gctx)
			return nil
		})
	}

	vehicleRepo := mongodb.NewListingRepository(db, domain.KindVehicle, appLogger)
	sparePartRepo := mongodb.NewListingRepository(db, domain.KindSparePart, appLogger)
	sequence := usecase.NewSequenceAllocator(mongodb.NewCounterRepository(db, appLogger), usecase.SequenceOptions{
		Pad:      cfg.SequencePad,
		Baseline: cfg.SequenceBaseline,
	}, appLogger)

	facets := usecase.NewFacetUsecase(vehicleRepo, facetCache, cfg.FacetCacheTTL, appLogger)

	vehicleOpts := append([]usecase.Option{
		usecase.WithImageFolder(cfg.VehicleImageFolder),
		usecase.WithMaxImages(vehicleMaxImages),
		usecase.WithFacetInvalidator(facets),
	}, shared...)
	if notifier != nil {
		vehicleOpts = append(vehicleOpts, usecase.WithNotifier(notifier))
	}
	vehicles := usecase.NewListingUsecase(domain.KindVehicle, vehicleRepo, sequence, imageStore, htmlSanitizer, appLogger, vehicleOpts...)

	sparePartOpts := append([]usecase.Option{
		usecase.WithImageFolder(cfg.SparePartImageFolder),
		usecase.WithMaxImages(sparePartMaxImages),
	}, shared...)
	spareParts := usecase.NewListingUsecase(domain.KindSparePart, sparePartRepo, sequence, imageStore, htmlSanitizer, appLogger, sparePartOpts...)

	mux := router.New(router.Handlers{
		Vehicles:   handler.NewListingHandler(vehicles, vehicleMaxImages, metricsManager, appLogger),
		SpareParts: handler.NewListingHandler(spareParts, sparePartMaxImages, metricsManager, appLogger),
		Facets:     handler.NewFacetHandler(facets, appLogger),
	}, cfg.JWTSecret, metricsManager, appLogger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	grpcServer := grpcAdapter.NewServer(cfg.ServiceName, appLogger)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	g.Go(func() error { return grpcServer.Serve(lis) })
	g.Go(func() error {
		grpcServer.Monitor(gctx, 15*time.Second, func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		})
		return nil
	})

	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down")
		grpcServer.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	appLogger.Info("Server stopped")
	return nil
}
