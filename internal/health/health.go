// Package health отдает состояние сервиса по HTTP (/healthz, /readyz)
// и через стандартный gRPC health-протокол.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName - имя сервиса в gRPC health-протоколе
const ServiceName = "mockinterview"

// Server хранит признак готовности и публикует его
type Server struct {
	port   int
	ready  atomic.Bool
	logger *zap.Logger

	grpcHealth *grpchealth.Server
	grpcServer *grpc.Server
}

// New создает сервер состояния. port - порт gRPC.
func New(port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		port:       port,
		logger:     logger,
		grpcHealth: grpchealth.NewServer(),
	}
	s.SetReady(false)
	return s
}

// SetReady отмечает готовность сервиса принимать запросы
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.grpcHealth.SetServingStatus("", status)
	s.grpcHealth.SetServingStatus(ServiceName, status)
}

// Ready сообщает текущую готовность
func (s *Server) Ready() bool {
	return s.ready.Load()
}

// Register добавляет /healthz и /readyz в mux
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleStatus)
	mux.HandleFunc("GET /readyz", s.handleStatus)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListenAndServeGRPC запускает gRPC сервер с health-сервисом и reflection.
// Блокируется до отмены контекста.
func (s *Server) ListenAndServeGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)
	reflection.Register(s.grpcServer)

	s.logger.Info("gRPC health сервер запущен", zap.Int("port", s.port))

	go func() {
		<-ctx.Done()
		s.logger.Info("gRPC health сервер останавливается")
		s.grpcHealth.Shutdown()
		s.grpcServer.GracefulStop()
	}()

	return s.grpcServer.Serve(lis)
}
