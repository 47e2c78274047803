package discover

import (
	"fmt"
	"io"
	"strings"
)

// Render writes a plain-text view of snap.
func Render(w io.Writer, snap Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Search: %s\n", snap.Query)

	b.WriteString("\nTrending Movies\n")
	switch snap.Trending.Phase {
	case PhaseLoading:
		b.WriteString("  loading...\n")
	case PhaseFailed:
		fmt.Fprintf(&b, "  %s\n", snap.Trending.Message)
	case PhaseLoaded:
		if len(snap.Trending.Data) == 0 {
			b.WriteString("  no searches yet\n")
		}
		for i, rec := range snap.Trending.Data {
			fmt.Fprintf(&b, "  %d. %s (%d) %s\n", i+1, rec.SearchTerm, rec.Count, rec.PosterURL)
		}
	}

	b.WriteString("\nAll Movies\n")
	switch snap.Movies.Phase {
	case PhaseLoading:
		b.WriteString("  loading...\n")
	case PhaseFailed:
		fmt.Fprintf(&b, "  %s\n", snap.Movies.Message)
	case PhaseLoaded:
		if len(snap.Movies.Data) == 0 {
			b.WriteString("  no movies found\n")
		}
		for _, m := range snap.Movies.Data {
			fmt.Fprintf(&b, "  %s  * %s  %s  %s\n", m.Title, m.Rating(), m.Language(), m.Year())
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
