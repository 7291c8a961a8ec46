package app

import (
	"context"
	"fmt"
	"net"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/doc-extractor/internal/server"
)

// ServeGRPC runs the extraction service on addr until ctx ends, then drains
// the queue and stops gracefully.
func (a *App) ServeGRPC(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		a.Logger.Error("failed to listen on address", "addr", addr, "error", err)
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	queue := a.NewQueue()
	grpcServer, hs := server.NewGRPCServer(a.ExtractionService(queue), a.Logger)

	serveErr := make(chan error, 1)
	a.Logger.Info("doc-extractor listening", "addr", lis.Addr().String())
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		queue.Shutdown(context.Background())
		return fmt.Errorf("grpc serve: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ProcessTimeout+10*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	return nil
}
