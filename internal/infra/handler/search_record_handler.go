package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

const maxSearchRecordBody = 16 << 10

// SearchRecordHandler accepts searches made by clients that query the catalog themselves.
type SearchRecordHandler struct {
	service *usecaseSearchCount.Service
}

// NewSearchRecordHandler builds a SearchRecordHandler.
func NewSearchRecordHandler(service *usecaseSearchCount.Service) *SearchRecordHandler {
	return &SearchRecordHandler{service: service}
}

// RegisterRoutes adds the recording route.
func (h *SearchRecordHandler) RegisterRoutes(r chiRouter) {
	r.Post("/searches", h.handleRecord)
}

type searchRecordRequest struct {
	SearchTerm string `json:"search_term"`
	Movie      *struct {
		ID         movie.ID `json:"id"`
		PosterPath string   `json:"poster_path"`
	} `json:"movie"`
}

func (h *SearchRecordHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}

	var req searchRecordRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSearchRecordBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("request body must be valid JSON"))
		return
	}
	term, err := searchcount.NormalizeTerm(req.SearchTerm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Movie == nil || req.Movie.ID <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("movie.id is required"))
		return
	}

	h.service.RecordSearch(r.Context(), term, movie.Movie{ID: req.Movie.ID, PosterPath: req.Movie.PosterPath})
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}
