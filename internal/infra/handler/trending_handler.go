package handler

import (
	"net/http"

	"movieflix/internal/domain/movie"
	"movieflix/internal/domain/searchcount"
	usecaseSearchCount "movieflix/internal/usecase/searchcount"
)

// TrendingHandler serves the ranked search view.
type TrendingHandler struct {
	service      *usecaseSearchCount.Service
	defaultLimit int
}

// NewTrendingHandler builds a TrendingHandler. defaultLimit applies when ?limit is absent.
func NewTrendingHandler(service *usecaseSearchCount.Service, defaultLimit int) *TrendingHandler {
	return &TrendingHandler{service: service, defaultLimit: searchcount.NormalizeLimit(defaultLimit)}
}

// RegisterRoutes adds trending routes.
func (h *TrendingHandler) RegisterRoutes(r chiRouter) {
	r.Get("/trending", h.handleTrending)
}

func (h *TrendingHandler) handleTrending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	limit, err := readQueryInt(r, "limit", 1, searchcount.MaxTopLimit, h.defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, cacheHit, err := h.service.TopSearchesWithCacheStatus(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := trendingResponse{Items: make([]trendingItem, 0, len(records))}
	for i, rec := range records {
		resp.Items = append(resp.Items, trendingItem{
			Rank:       i + 1,
			SearchTerm: rec.SearchTerm,
			Count:      rec.Count,
			PosterURL:  rec.PosterURL,
			MovieID:    rec.MovieID,
		})
	}

	setCacheHeaders(w, cacheHit, trendingMaxAge)
	writeJSON(w, http.StatusOK, resp)
}

type trendingResponse struct {
	Items []trendingItem `json:"items"`
}

type trendingItem struct {
	Rank       int      `json:"rank"`
	SearchTerm string   `json:"search_term"`
	Count      int64    `json:"count"`
	PosterURL  string   `json:"poster_url"`
	MovieID    movie.ID `json:"movie_id"`
}
