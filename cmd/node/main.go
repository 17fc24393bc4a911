package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chorddht/internal/bootstrap"
	"chorddht/internal/chord"
	"chorddht/internal/config"
	"chorddht/internal/domain"
	"chorddht/internal/driver"
	"chorddht/internal/logger"
	zapfactory "chorddht/internal/logger/zap"
	"chorddht/internal/peerclient"
	"chorddht/internal/server"
	"chorddht/internal/store"
	"chorddht/internal/telemetry"
	"chorddht/internal/telemetry/lookuptrace"
	"chorddht/internal/transport/grpcpeer"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewZapAdapter(zapLog)
	} else {
		lgr = &logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	lis, advertised, err := server.Listen(cfg.Node.Mode, cfg.Node.Bind, cfg.Node.Host, cfg.Node.Port)
	if err != nil {
		lgr.Error("failed to initialize listener", logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }()
	lgr.Debug("listener created", logger.F("addr", advertised))

	var id domain.ID
	if cfg.Node.Id != "" {
		id, err = domain.ParseID(cfg.Node.Id)
		if err != nil {
			lgr.Error("invalid node.id in configuration", logger.F("err", err))
			os.Exit(1)
		}
	} else {
		id = domain.HashString(advertised)
	}
	self := domain.Peer{ID: id, Addr: advertised}
	lgr = lgr.Named("node").With(logger.FPeer("self", self))
	lgr.Info("node initializing")

	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "chorddht-node", id)
	defer func() { _ = shutdownTracer(context.Background()) }()

	st := store.New(self, cfg.Ring.SuccessorListSize, store.WithLogger(lgr.Named("store")))
	// Every finger starts pointing at self, per the lifecycle: a node is
	// never left with a zero-value routing table, whether it ends up
	// creating a new ring or joining an existing one.
	st.InitSingleNode()

	dialer := grpcpeer.Dial
	var grpcOpts []grpc.ServerOption
	if cfg.Telemetry.Tracing.Enabled {
		dialer = grpcpeer.DialWithInterceptor(lookuptrace.ClientInterceptor(), otelgrpc.NewClientHandler())
		grpcOpts = append(grpcOpts,
			grpc.ChainUnaryInterceptor(lookuptrace.ServerInterceptor()),
			grpc.StatsHandler(otelgrpc.NewServerHandler()),
		)
		lgr.Debug("gRPC tracing enabled: ambient otelgrpc spans plus find_successor lookup chains")
	}
	pool := peerclient.New(dialer, lgr.Named("peerclient"))

	svc := chord.New(self, st, pool, chord.WithLogger(lgr.Named("chord")))

	srv, err := server.New(lis, svc, grpcOpts, server.WithLogger(lgr.Named("server")))
	if err != nil {
		lgr.Error("failed to initialize gRPC server", logger.F("err", err))
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	lgr.Info("gRPC server started", logger.F("addr", advertised))

	maint := cfg.Ring.Maintenance
	drv := driver.New(svc, maint.Interval, maint.JoinRetryInterval, maint.MaxJoinRetries, maint.RequestTimeout,
		driver.WithLogger(lgr.Named("driver")))

	var disco bootstrap.Bootstrap
	switch cfg.Bootstrap.Mode {
	case "route53":
		disco, err = bootstrap.NewRoute53Bootstrap(cfg.Bootstrap.Route53)
		if err != nil {
			lgr.Error("failed to initialize route53 bootstrap", logger.F("err", err))
			srv.Stop()
			os.Exit(1)
		}
	case "static":
		disco = bootstrap.NewStaticBootstrap(cfg.Bootstrap.Peers)
	case "init":
		disco = bootstrap.NewStaticBootstrap(nil)
	default:
		lgr.Error("unsupported bootstrap mode", logger.F("mode", cfg.Bootstrap.Mode))
		srv.Stop()
		os.Exit(1)
	}

	discoverCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := disco.Discover(discoverCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		srv.Stop()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if len(peers) == 0 {
		svc.CreateRing()
		lgr.Info("started a new ring")
	} else {
		bootstrapPeer := domain.Peer{ID: domain.HashString(peers[0]), Addr: peers[0]}
		if err := drv.JoinWithRetry(ctx, bootstrapPeer); err != nil {
			lgr.Error("failed to join ring, aborting", logger.F("err", err))
			stop()
			srv.Stop()
			os.Exit(1)
		}
	}

	registerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := disco.Register(registerCtx, self); err != nil {
		lgr.Warn("failed to register with bootstrap discovery", logger.F("err", err))
	}
	cancel()
	defer func() {
		deregisterCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := disco.Deregister(deregisterCtx, self); err != nil {
			lgr.Warn("failed to deregister from bootstrap discovery", logger.F("err", err))
		}
	}()

	go drv.Run(ctx)
	lgr.Info("maintenance loop started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, stopping gracefully")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
			lgr.Info("server stopped gracefully")
		case <-shutdownCtx.Done():
			lgr.Warn("graceful stop timed out, forcing shutdown")
			srv.Stop()
		}
		cancel()

	case err := <-serveErr:
		lgr.Error("gRPC server terminated unexpectedly", logger.F("err", err))
		stop()
		os.Exit(1)
	}

	lgr.Info("shutdown complete")
}
