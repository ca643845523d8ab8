package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultShutdownTimeout = 10 * time.Second

// Options は Server の構築パラメータです。
type Options struct {
	ListenAddr string
	// HealthListenAddr が空の場合、gRPC ヘルスチェックサーバーは起動しません。
	HealthListenAddr string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	Logger           *zap.Logger
}

// Server は HTTP API サーバーと gRPC ヘルスチェックサーバーのライフサイクルを管理します。
type Server struct {
	opts       Options
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zap.Logger

	ready chan struct{}
	addrs Addrs
}

// Addrs は実際に待ち受けているアドレスです。
type Addrs struct {
	HTTP   net.Addr
	Health net.Addr
}

// New は handler を提供する Server を構築します。
func New(handler http.Handler, opts Options, grpcOpts ...grpc.ServerOption) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts: opts,
		httpServer: &http.Server{
			Addr:         opts.ListenAddr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		logger: logger,
		ready:  make(chan struct{}),
	}

	if opts.HealthListenAddr != "" {
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}

	return s
}

// Ready は待ち受けを開始すると close されるチャネルを返します。
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addrs は待ち受けアドレスを返します。Ready が close される前は空です。
func (s *Server) Addrs() Addrs {
	return s.addrs
}

// Run はサーバーを起動し、コンテキストがキャンセルされると安全に停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.ListenAddr, err)
	}
	s.addrs.HTTP = httpLis.Addr()

	var healthLis net.Listener
	if s.grpcServer != nil {
		healthLis, err = net.Listen("tcp", s.opts.HealthListenAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.opts.HealthListenAddr, err)
		}
		s.addrs.Health = healthLis.Addr()
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.Stringer("addr", httpLis.Addr()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		g.Go(func() error {
			s.logger.Info("grpc health server listening", zap.Stringer("addr", healthLis.Addr()))
			if err := s.grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	close(s.ready)

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down servers", zap.Duration("timeout", s.opts.ShutdownTimeout))

	if s.health != nil {
		s.health.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		err = fmt.Errorf("shutdown http: %w", err)
	}

	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}

	return err
}
