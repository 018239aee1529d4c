package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"b1bridge/diapi"
	"b1bridge/orders"
	"b1bridge/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// respondErr maps the error taxonomy onto HTTP statuses. Remote error text is
// passed through to the caller; nothing is swallowed.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *orders.NotFoundError
	var remote *diapi.RemoteError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrAmbiguousContact):
		status = http.StatusConflict
	case errors.Is(err, orders.ErrInvalidInput),
		errors.Is(err, store.ErrBadTable),
		errors.Is(err, store.ErrBadIdentifier),
		errors.Is(err, store.ErrBadOperator):
		status = http.StatusBadRequest
	case errors.As(err, &remote):
		status = http.StatusBadGateway
	}

	h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// queryLimit parses the limit parameter, defaulting like the read operations
// historically did.
func queryLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// queryColumns parses the comma-separated columns parameter.
func queryColumns(r *http.Request) []string {
	return splitColumns(r.URL.Query().Get("columns"))
}

func splitColumns(v string) []string {
	if v == "" {
		return nil
	}
	var cols []string
	for _, col := range strings.Split(v, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

var filterOps = map[string]string{
	"eq":   "=",
	"ne":   "<>",
	"lt":   "<",
	"le":   "<=",
	"gt":   ">",
	"ge":   ">=",
	"like": "LIKE",
}

// queryFilters parses repeated filter parameters of the form "Col:value" or
// "Col:op:value" into ordered predicates. Malformed filters fail here, at the
// boundary, rather than inside the query builder.
func queryFilters(r *http.Request) ([]store.Filter, error) {
	var filters []store.Filter
	for _, raw := range r.URL.Query()["filter"] {
		parts := strings.SplitN(raw, ":", 3)
		switch len(parts) {
		case 2:
			filters = append(filters, store.Filter{Col: parts[0], Value: parts[1]})
		case 3:
			op, ok := filterOps[strings.ToLower(parts[1])]
			if !ok {
				return nil, fmt.Errorf("%w: %q", store.ErrBadOperator, parts[1])
			}
			filters = append(filters, store.Filter{Col: parts[0], Op: op, Value: parts[2]})
		default:
			return nil, fmt.Errorf("%w: filter %q", store.ErrBadIdentifier, raw)
		}
	}
	return filters, nil
}
