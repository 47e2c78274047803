package movie

import (
	"strconv"
	"strings"
)

const (
	// DefaultImageBaseURL is the TMDb image host prefix used for w500 posters.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	// PlaceholderPosterURL is served when a movie has no poster.
	PlaceholderPosterURL = "/no-movie.png"

	notAvailable = "N/A"
)

// ID identifies a movie in the catalog.
type ID = int64

// Movie represents a catalog item.
type Movie struct {
	ID               ID
	Title            string
	PosterPath       string
	VoteAverage      float64
	OriginalLanguage string
	ReleaseDate      string
	Overview         string
}

// PosterURL composes the poster URL from an image base and a poster path.
// An empty path yields PlaceholderPosterURL.
func PosterURL(base, posterPath string) string {
	path := strings.TrimSpace(posterPath)
	if path == "" {
		return PlaceholderPosterURL
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultImageBaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Rating returns the vote average with one decimal, or "N/A" when unrated.
func (m Movie) Rating() string {
	if m.VoteAverage == 0 {
		return notAvailable
	}
	return strconv.FormatFloat(m.VoteAverage, 'f', 1, 64)
}

// Language returns the original language code or "N/A".
func (m Movie) Language() string {
	if lang := strings.TrimSpace(m.OriginalLanguage); lang != "" {
		return lang
	}
	return notAvailable
}

// Year returns the release year or "N/A".
func (m Movie) Year() string {
	date := strings.TrimSpace(m.ReleaseDate)
	if date == "" {
		return notAvailable
	}
	year, _, _ := strings.Cut(date, "-")
	return year
}

// CatalogError is returned when the catalog answers with an error payload.
type CatalogError struct {
	Message string
}

func (e *CatalogError) Error() string {
	if e == nil || e.Message == "" {
		return "catalog error"
	}
	return "catalog error: " + e.Message
}
