package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rentlink-backend/internal/domain"
)

type cancelRentalBody struct {
	Reason string `json:"reason"`
}

func (s *Server) cancelRental(w http.ResponseWriter, r *http.Request) {
	var body cancelRentalBody
	if err := readJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, string(domain.KindValidation), "invalid request body")
		return
	}
	rental, err := s.rentals.CancelRental(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()), body.Reason)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) completeRental(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, string(domain.KindValidation), "force must be a boolean")
			return
		}
		force = parsed
	}
	rental, err := s.rentals.CompleteRental(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()), force)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) getRental(w http.ResponseWriter, r *http.Request) {
	rental, err := s.rentals.GetRental(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) listMyRentals(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	q := r.URL.Query()
	items, total, err := s.rentals.ListMyRentals(r.Context(), userIDFrom(r.Context()), q.Get("role"), q.Get("status"), page, pageSize)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Rental]{Items: nonNil(items), Total: total, Page: page, PageSize: pageSize})
}
