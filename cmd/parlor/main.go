// Package main runs the parlor game room server: WebSocket and gRPC
// transports for clients, plus a Telnet frontend for text play.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/parlor/internal/config"
	"github.com/cory-johannsen/parlor/internal/frontend/handlers"
	"github.com/cory-johannsen/parlor/internal/frontend/telnet"
	"github.com/cory-johannsen/parlor/internal/frontend/websocket"
	"github.com/cory-johannsen/parlor/internal/game/room"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/gameserver"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry := session.NewRegistry()
	store := room.NewStore(registry, logger)
	coord := gameserver.NewCoordinator(store, cfg.Session, logger)

	lifecycle := server.NewLifecycle(logger, server.WithStopTimeout(cfg.Server.ShutdownTimeout))

	ws := websocket.NewServer(cfg.HTTP, cfg.WebSocket, coord, logger)
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: ws.ListenAndServe,
		StopFn:  ws.Stop,
	})

	if cfg.GRPC.Enabled {
		grpcServer := grpc.NewServer()
		gameserver.RegisterSessionServiceServer(grpcServer, gameserver.NewSessionService(coord, logger))
		lifecycle.Add("grpc", &server.FuncService{
			StartFn: func() error {
				lis, err := net.Listen("tcp", cfg.GRPC.Addr())
				if err != nil {
					return fmt.Errorf("listening on %s: %w", cfg.GRPC.Addr(), err)
				}
				logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
				return grpcServer.Serve(lis)
			},
			StopFn: func() {
				// Session streams are long-lived; give them half the budget to drain.
				stopped := make(chan struct{})
				go func() {
					grpcServer.GracefulStop()
					close(stopped)
				}()
				select {
				case <-stopped:
				case <-time.After(cfg.Server.ShutdownTimeout / 2):
					grpcServer.Stop()
				}
			},
		})
	}

	if cfg.Telnet.Enabled {
		acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewPlayHandler(coord, logger), logger)
		lifecycle.Add("telnet", &server.FuncService{
			StartFn: acceptor.ListenAndServe,
			StopFn:  acceptor.Stop,
		})
	}

	logger.Info("parlor initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.Bool("grpc", cfg.GRPC.Enabled),
		zap.Bool("telnet", cfg.Telnet.Enabled),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
