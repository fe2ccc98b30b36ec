package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "roomallot/pkg/errors"
)

// ExtractTimeRange reads the required start_time and end_time query
// parameters as RFC3339 timestamps.
func ExtractTimeRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	start, err := parseRFC3339("start_time", query.Get("start_time"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseRFC3339("end_time", query.Get("end_time"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func ExtractInt(value, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s parameter: %s", name, value))
	}
	return v, nil
}

func parseRFC3339(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("'%s' query parameter is required", name))
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s format, must be RFC3339", name))
	}
	return t, nil
}
