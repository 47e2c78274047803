package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	domainMovie "movieflix/internal/domain/movie"
	"movieflix/internal/infra/external/tmdb"
	usecaseMovie "movieflix/internal/usecase/movie"
)

// MovieHandler serves catalog endpoints.
type MovieHandler struct {
	service      *usecaseMovie.Service
	imageBaseURL string
}

// NewMovieHandler builds a MovieHandler. imageBaseURL prefixes poster paths.
func NewMovieHandler(service *usecaseMovie.Service, imageBaseURL string) *MovieHandler {
	return &MovieHandler{service: service, imageBaseURL: imageBaseURL}
}

// RegisterRoutes adds movie routes.
func (h *MovieHandler) RegisterRoutes(r chiRouter) {
	r.Get("/movies", h.handleFind)
	r.Get("/movies/popular", h.handlePopular)
}

func (h *MovieHandler) handleFind(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	query, err := readQueryString(r, "query")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, cacheHit, err := h.service.FindWithCacheStatus(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	maxAge := searchMaxAge
	if result.Query == "" {
		maxAge = popularMaxAge
	}
	setCacheHeaders(w, cacheHit, maxAge)
	writeJSON(w, http.StatusOK, h.toListResponse(result.Query, result.Movies))
}

func (h *MovieHandler) handlePopular(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	movies, cacheHit, err := h.service.PopularWithCacheStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	setCacheHeaders(w, cacheHit, popularMaxAge)
	writeJSON(w, http.StatusOK, h.toListResponse("", movies))
}

func (h *MovieHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecaseMovie.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, usecaseMovie.ErrCatalogUnavailable):
		// A throttled catalog maps to 503 carrying the upstream Retry-After.
		if wait, ok := tmdb.IsTooManyRequests(err); ok {
			if wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *MovieHandler) toListResponse(query string, movies []domainMovie.Movie) movieListResponse {
	resp := movieListResponse{
		Query:   query,
		Results: make([]movieResponse, 0, len(movies)),
		Total:   len(movies),
	}
	for _, m := range movies {
		resp.Results = append(resp.Results, movieResponse{
			ID:               m.ID,
			Title:            m.Title,
			PosterPath:       m.PosterPath,
			PosterURL:        domainMovie.PosterURL(h.imageBaseURL, m.PosterPath),
			VoteAverage:      m.VoteAverage,
			Rating:           m.Rating(),
			OriginalLanguage: m.OriginalLanguage,
			Language:         m.Language(),
			ReleaseDate:      m.ReleaseDate,
			Year:             m.Year(),
			Overview:         m.Overview,
		})
	}
	return resp
}

type movieListResponse struct {
	Query   string          `json:"query"`
	Results []movieResponse `json:"results"`
	Total   int             `json:"total"`
}

type movieResponse struct {
	ID               domainMovie.ID `json:"id"`
	Title            string         `json:"title"`
	PosterPath       string         `json:"poster_path"`
	PosterURL        string         `json:"poster_url"`
	VoteAverage      float64        `json:"vote_average"`
	Rating           string         `json:"rating"`
	OriginalLanguage string         `json:"original_language"`
	Language         string         `json:"language"`
	ReleaseDate      string         `json:"release_date"`
	Year             string         `json:"year"`
	Overview         string         `json:"overview"`
}
