package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/seedora/registry/internal/config"
	"github.com/seedora/registry/internal/infra/database"
	"github.com/seedora/registry/internal/infra/gateway"
	"github.com/seedora/registry/internal/infra/repository"
	"github.com/seedora/registry/internal/present/rest"
	"github.com/seedora/registry/internal/service"
	"github.com/seedora/registry/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx := context.Background()

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
	if err != nil {
		panic("failed to connect redis")
	}

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up trace provider: " + err.Error())
		}
		defer shutdown()
	}

	pinning := gateway.NewPinningClient(
		conf.Pinning.Endpoint,
		conf.Pinning.Gateway,
		conf.Pinning.APIKey,
		conf.Pinning.APISecret,
	)
	ledger := gateway.NewLedgerClient(
		conf.Ledger.NodeURL,
		conf.Ledger.NodeToken,
		conf.Ledger.AssetUnitName,
	)

	recordRepo := repository.NewRecordRepository(db, mc)
	signal := service.NewSignalService(rdb)

	domainConf := conf.Domain()
	registrationUC := usecase.NewRegistrationUsecase(pinning, ledger, recordRepo, signal, domainConf)
	recordUC := usecase.NewRecordUsecase(recordRepo, pinning)

	e := echo.New()
	e.JSONSerializer = rest.JSONSerializer{}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("seedora-registry"))
	}

	handler := rest.NewHandler(domainConf, registrationUC, recordUC, signal)
	handler.RegisterRoutes(e)

	slog.Info("starting server", slog.String("addr", conf.Server.ListenAddr))
	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("seedora-registry"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Error("failed to shut down trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
