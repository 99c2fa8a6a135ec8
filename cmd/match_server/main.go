package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/mobai/internal/config"
	"github.com/mitchelldurbincs/mobai/internal/grpc/matchserver"
	"github.com/mitchelldurbincs/mobai/internal/monitoring"
	"github.com/mitchelldurbincs/mobai/internal/replay"
	"github.com/mitchelldurbincs/mobai/internal/spectator"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxMatches := flag.Int("max-matches", -1, "Maximum concurrent matches (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}
	cfg := config.Get()

	if *port == -1 {
		*port = cfg.Server.MatchServer.Port
	}
	if *host == "" {
		*host = cfg.Server.MatchServer.Host
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.MatchServer.LogLevel
	}
	if *maxMatches == -1 {
		*maxMatches = cfg.Server.MatchServer.MaxMatches
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.MatchServer.EnableReflection
	}

	setupLogging(*logLevel)

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_matches", *maxMatches).
		Str("replay", cfg.Replay.Type).
		Msg("Starting gRPC match server")

	store, err := replay.NewStore(replay.Config{
		Type:    replay.StoreType(cfg.Replay.Type),
		BaseDir: cfg.Replay.BaseDir,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create replay store")
	}
	defer store.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor,
		recoveryInterceptor,
	))

	matches := matchserver.NewMatchManager(*maxMatches, store, log.Logger)
	matchService := matchserver.NewServer(matches, log.Logger)
	matchserver.RegisterMatchServiceServer(grpcServer, matchService)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	matchService.StartCleanup(ctx)

	monitor := monitoring.NewGoroutineMonitor(log.Logger, 0, 0)
	monitor.Track("active_matches", matches.ActiveMatches)
	monitor.Start()
	defer monitor.Stop()

	var spectatorServer *http.Server
	if cfg.Server.Spectator.Enabled {
		hub := spectator.NewHub(log.Logger)
		defer hub.Close()
		matches.OnTurn(func(n matchserver.TurnNotice) { hub.Broadcast(n.MatchID, n) })

		spectatorServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Spectator.Host, cfg.Server.Spectator.Port),
			Handler:           spectator.NewRouter(matches, hub, matchserver.ErrMatchNotFound, log.Logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("address", spectatorServer.Addr).Msg("Spectator endpoint listening")
			if err := spectatorServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Spectator endpoint failed")
			}
		}()
	}

	if config.ConfigFilePath() != "" {
		config.WatchConfig(func() {
			next := config.Get()
			setupLogging(next.Server.MatchServer.LogLevel)
			matches.SetMaxMatches(next.Server.MatchServer.MaxMatches)
			log.Info().
				Str("file", config.ConfigFilePath()).
				Int("max_matches", next.Server.MatchServer.MaxMatches).
				Msg("Configuration reloaded")
		}, func(err error) {
			log.Warn().Err(err).Msg("Ignoring invalid configuration change")
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(config.Get().Server.MatchServer.GracefulShutdownDelay) * time.Second)

		if spectatorServer != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			if err := spectatorServer.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Spectator endpoint shutdown")
			}
			done()
		}

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutdown complete")
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	log.Info().
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}
