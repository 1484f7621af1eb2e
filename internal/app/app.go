package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fekt2016/eaz-back-sub005/internal/inventory"
	"github.com/fekt2016/eaz-back-sub005/internal/ledger"
	"github.com/fekt2016/eaz-back-sub005/internal/notify"
	"github.com/fekt2016/eaz-back-sub005/internal/orders"
	"github.com/fekt2016/eaz-back-sub005/internal/platform"
	"github.com/fekt2016/eaz-back-sub005/internal/refunds"
	"github.com/fekt2016/eaz-back-sub005/internal/sellers"
	"github.com/fekt2016/eaz-back-sub005/internal/settlement"
	"github.com/fekt2016/eaz-back-sub005/internal/taxes"
	"github.com/fekt2016/eaz-back-sub005/internal/wallet"
	"github.com/fekt2016/eaz-back-sub005/pkg/config"
	"github.com/fekt2016/eaz-back-sub005/pkg/db"
	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
	"github.com/fekt2016/eaz-back-sub005/pkg/metrics"
	"github.com/fekt2016/eaz-back-sub005/pkg/migrate"
	"github.com/fekt2016/eaz-back-sub005/pkg/redis"
)

// App is the wired settlement core. Embedding processes (payment webhooks,
// order workers, admin tooling) construct one App and call into its
// services; App owns the shared infrastructure underneath them.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      *db.Client
	Redis   *redis.Client
	Metrics *metrics.SettlementMetrics

	Engine  settlement.Engine
	Stock   inventory.Service
	Refunds refunds.Service
	Wallet  wallet.Service
	Sellers sellers.Service
	Ledger  ledger.Service
	Orders  orders.Repository
	Stats   platform.Repository
}

// Options tweak bootstrap behavior.
type Options struct {
	ServiceName string
	// Registerer receives the settlement metrics; nil falls back to the
	// default prometheus registerer.
	Registerer prometheus.Registerer
}

// New loads config from the environment and wires the full stack: logger,
// postgres, redis, metrics, and every settlement service on top of them.
// Dev environments with auto-migrate enabled run pending migrations first.
func New(ctx context.Context, opts Options) (*App, error) {
	name := opts.ServiceName
	if name == "" {
		name = "settlement"
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: name,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("bootstrap redis: %w", err)
	}

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	app, err := build(cfg, logg, dbClient, redisClient, registerer)
	if err != nil {
		redisClient.Close()
		dbClient.Close()
		return nil, err
	}
	return app, nil
}

func build(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registerer prometheus.Registerer,
) (*App, error) {
	conn := dbClient.DB()

	calc, err := taxes.NewCalculator(cfg.Rates)
	if err != nil {
		return nil, fmt.Errorf("tax calculator: %w", err)
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}
	sellersSvc, err := sellers.NewService(sellers.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("sellers service: %w", err)
	}
	walletSvc, err := wallet.NewService(dbClient, wallet.NewRepository(conn), ledgerSvc)
	if err != nil {
		return nil, fmt.Errorf("wallet service: %w", err)
	}

	stockSvc, err := inventory.NewService(conn)
	if err != nil {
		return nil, fmt.Errorf("inventory service: %w", err)
	}

	ordersRepo := orders.NewRepository(conn)
	statsRepo := platform.NewRepository(conn, cfg.Rates.RevenueWindowDay)
	settlementMetrics := metrics.NewSettlementMetrics(registerer)
	notifier := notify.New(redisClient, logg)

	engine, err := settlement.NewEngine(
		dbClient,
		ordersRepo,
		sellersSvc,
		ledgerSvc,
		settlement.NewRepository(conn),
		statsRepo,
		stockSvc,
		calc,
		notifier,
		settlementMetrics,
		logg,
	)
	if err != nil {
		return nil, fmt.Errorf("settlement engine: %w", err)
	}

	refundsSvc, err := refunds.NewService(dbClient, refunds.NewRepository(conn), ordersRepo, engine, walletSvc, logg)
	if err != nil {
		return nil, fmt.Errorf("refunds service: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Redis:   redisClient,
		Metrics: settlementMetrics,
		Engine:  engine,
		Stock:   stockSvc,
		Refunds: refundsSvc,
		Wallet:  walletSvc,
		Sellers: sellersSvc,
		Ledger:  ledgerSvc,
		Orders:  ordersRepo,
		Stats:   statsRepo,
	}, nil
}

// Ping checks both datastores.
func (a *App) Ping(ctx context.Context) error {
	if err := a.DB.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := a.Redis.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	return errors.Join(a.Redis.Close(), a.DB.Close())
}
