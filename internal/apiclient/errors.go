package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidResponse = errors.New("invalid JSON response")

// HTTPError is returned for every non-2xx backend response. Its message is
// the response body when there is one, "HTTP <status>" otherwise.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// StatusOf reports the backend status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, true
	}
	return 0, false
}
