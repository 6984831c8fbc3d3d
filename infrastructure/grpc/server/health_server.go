package server

import (
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PresenceService is the service name probes ask about.
const PresenceService = "presence"

// HealthServer exposes the standard gRPC health protocol.
// The presence service turns NOT_SERVING as soon as a presence sweep fails
// and SERVING again after the next clean one.
type HealthServer struct {
	mu      sync.Mutex
	log     *slog.Logger
	server  *health.Server
	healthy bool
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	server := health.NewServer()
	server.SetServingStatus(PresenceService, healthpb.HealthCheckResponse_SERVING)
	return &HealthServer{log: log, server: server, healthy: true}
}

func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

func (h *HealthServer) Report(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if healthy == h.healthy {
		return
	}
	h.healthy = healthy
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.log.Info("Presence health changed", "status", status.String())
	h.server.SetServingStatus(PresenceService, status)
}

// Shutdown sets every service to NOT_SERVING so load balancers stop routing before the process exits.
func (h *HealthServer) Shutdown() {
	h.server.Shutdown()
}
