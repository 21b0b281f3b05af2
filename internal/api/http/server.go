package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentlink-backend/internal/security"
	"rentlink-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type Server struct {
	requests service.RentalRequestService
	rentals  service.RentalService
	tokens   security.TokenManager
	gatherer prometheus.Gatherer
	ping     Pinger
}

func NewServer(requests service.RentalRequestService, rentals service.RentalService, tokens security.TokenManager, gatherer prometheus.Gatherer, ping Pinger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		requests: requests,
		rentals:  rentals,
		tokens:   tokens,
		gatherer: gatherer,
		ping:     ping,
	}
}

// Handler builds the router. Route names key the security table in config.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID, s.authenticate)

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet).Name("Healthz")
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("Metrics")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/listings/{id}/requests", s.createRequest).Methods(http.MethodPost).Name("CreateRentalRequest")
	api.HandleFunc("/requests/me", s.listMyRequests).Methods(http.MethodGet).Name("ListMyRequests")
	api.HandleFunc("/requests/incoming", s.listIncomingRequests).Methods(http.MethodGet).Name("ListIncomingRequests")
	api.HandleFunc("/requests/{id}", s.getRequest).Methods(http.MethodGet).Name("GetRentalRequest")
	api.HandleFunc("/requests/{id}/approve", s.approveRequest).Methods(http.MethodPatch).Name("ApproveRentalRequest")
	api.HandleFunc("/requests/{id}/reject", s.rejectRequest).Methods(http.MethodPatch).Name("RejectRentalRequest")
	api.HandleFunc("/requests/{id}/cancel", s.cancelRequest).Methods(http.MethodPatch).Name("CancelRentalRequest")

	api.HandleFunc("/rentals/me", s.listMyRentals).Methods(http.MethodGet).Name("ListMyRentals")
	api.HandleFunc("/rentals/{id}", s.getRental).Methods(http.MethodGet).Name("GetRental")
	api.HandleFunc("/rentals/{id}/cancel", s.cancelRental).Methods(http.MethodPatch).Name("CancelRental")
	api.HandleFunc("/rentals/{id}/complete", s.completeRental).Methods(http.MethodPatch).Name("CompleteRental")

	r.NotFoundHandler = withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found", "route not found")
	}))
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
