package grpc

import (
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// NewGRPCServer creates a gRPC server exposing the playback service with
// Prometheus metrics, health checking and reflection.
func NewGRPCServer(p Player, cfg ServerConfig) *grpc.Server {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})
	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	RegisterPlaybackServiceServer(grpcServer, NewServer(p, cfg))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)
	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer
}
