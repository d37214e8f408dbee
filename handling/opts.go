package handling

import (
	"ferreteria_server/catalog"
	"ferreteria_server/services"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ParseSearchOptions reads q, exact and mode from the query string
func ParseSearchOptions(r *http.Request) (catalog.Query, services.SearchMode, error) {
	query := r.URL.Query()

	q := catalog.Query{Text: query.Get("q")}

	if exact := query.Get("exact"); exact != "" {
		val, err := strconv.ParseBool(exact)
		if err != nil {
			return q, "", fmt.Errorf("invalid exact flag %q: %w", exact, err)
		}
		q.Exact = val
	}

	mode, err := services.ParseSearchMode(query.Get("mode"))
	if err != nil {
		return q, "", err
	}
	return q, mode, nil
}

// ParseSlot reads the {slot} URL parameter
func ParseSlot(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "slot"))
	slot, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.ErrInvalidSlot
	}
	return slot, nil
}
