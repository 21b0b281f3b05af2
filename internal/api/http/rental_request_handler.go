package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentlink-backend/internal/domain"
	"rentlink-backend/internal/service"
)

type createRequestBody struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Message    string `json:"message"`
	GuestCount *int   `json:"guestCount"`
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := readJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, string(domain.KindValidation), "invalid request body")
		return
	}

	req, err := s.requests.CreateRequest(r.Context(), service.CreateRequestInput{
		ListingID:  mux.Vars(r)["id"],
		BorrowerID: userIDFrom(r.Context()),
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
		Message:    body.Message,
		GuestCount: body.GuestCount,
	})
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	rental, err := s.requests.ApproveRequest(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()))
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if err := readJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, string(domain.KindValidation), "invalid request body")
		return
	}
	req, err := s.requests.RejectRequest(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()), body.Reason)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.requests.CancelRequest(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()))
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.requests.GetRequest(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) listMyRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	items, total, err := s.requests.ListMyRequests(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RentalRequest]{Items: nonNil(items), Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) listIncomingRequests(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	items, total, err := s.requests.ListIncomingRequests(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RentalRequest]{Items: nonNil(items), Total: total, Page: page, PageSize: pageSize})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
