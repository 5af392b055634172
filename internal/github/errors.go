package github

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/Kavirubc/gh-labeler/internal/retry"
)

// ErrMissingData indicates a well-formed GraphQL response without the
// requested repository connection.
var ErrMissingData = errors.New("github: response is missing repository data")

// IsNotFound checks if the error is an HTTP 404
func IsNotFound(err error) bool {
	var httpErr *api.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsGraphQLError checks if the server answered with a GraphQL errors array
func IsGraphQLError(err error) bool {
	var gqlErr *api.GraphQLError
	return errors.As(err, &gqlErr)
}

// isRateLimited checks for primary and secondary rate limit responses
func isRateLimited(httpErr *api.HTTPError) bool {
	if httpErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return httpErr.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(httpErr.Message), "rate limit")
}

// classifyREST marks client errors (4xx other than rate limiting) as
// permanent. Server errors and transport failures stay retryable.
func classifyREST(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && !isRateLimited(httpErr) {
			return retry.Permanent(err)
		}
	}
	return err
}
