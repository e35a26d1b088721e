package testutil

import (
	"net/http"

	"partnersearch/pkg/requestcontext"
)

// WithUsername adds an authenticated username to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithUsername(req *http.Request, username string) *http.Request {
	return req.WithContext(requestcontext.WithUsername(req.Context(), username))
}
