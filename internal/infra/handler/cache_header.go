package handler

import (
	"net/http"
	"strconv"
	"time"
)

const (
	cacheStatusHeader = "X-Cache"
	cacheStatusHit    = "HIT"
	cacheStatusMiss   = "MISS"

	cacheControlHeader = "Cache-Control"
)

// Browser cache lifetimes. Trending changes with every recorded search and is
// always revalidated.
const (
	popularMaxAge  = 5 * time.Minute
	searchMaxAge   = time.Minute
	trendingMaxAge = 0
)

// setCacheHeaders reports the server-side cache outcome and how long a browser
// may reuse the response.
func setCacheHeaders(w http.ResponseWriter, hit bool, maxAge time.Duration) {
	status := cacheStatusMiss
	if hit {
		status = cacheStatusHit
	}
	w.Header().Set(cacheStatusHeader, status)

	if maxAge <= 0 {
		w.Header().Set(cacheControlHeader, "no-cache")
		return
	}
	w.Header().Set(cacheControlHeader, "public, max-age="+strconv.Itoa(int(maxAge/time.Second)))
}
