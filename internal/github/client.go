package github

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"golang.org/x/time/rate"

	"github.com/Kavirubc/gh-labeler/internal/retry"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxLabels is how many labels are loaded per item.
	DefaultMaxLabels = 25

	// DefaultMaxFiles is how many changed files are loaded per pull request.
	DefaultMaxFiles = 100

	// MaxPageSize is the largest page the GraphQL API serves.
	MaxPageSize = 100
)

// DefaultLabelRetries is the retry schedule for label mutations
var DefaultLabelRetries = retry.Seconds(5, 10, 30)

type restDoer interface {
	DoWithContext(ctx context.Context, method, path string, body io.Reader, response interface{}) error
}

type graphQLDoer interface {
	DoWithContext(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error
}

// Options configures a Client
type Options struct {
	// Token is the GitHub token. When empty go-gh resolves one from
	// GH_TOKEN, GITHUB_TOKEN or the gh CLI config.
	Token string
	// Host defaults to github.com.
	Host              string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxLabels         int
	MaxFiles          int
	LabelRetries      *retry.Policy
}

// Client wraps GitHub API operations. A Client is owned by one caller;
// concurrent downloads each construct their own.
type Client struct {
	rest         restDoer
	graphql      graphQLDoer
	limiter      *rate.Limiter
	maxLabels    int
	maxFiles     int
	labelRetries retry.Policy
	sleep        retry.SleepFunc
}

// NewClient creates a new GitHub client
func NewClient(opts Options) (*Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	clientOpts := api.ClientOptions{
		AuthToken: opts.Token,
		Host:      opts.Host,
		Timeout:   opts.Timeout,
	}

	rest, err := api.NewRESTClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	graphql, err := api.NewGraphQLClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	return newClient(rest, graphql, opts), nil
}

func newClient(rest restDoer, graphql graphQLDoer, opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	c := &Client{
		rest:         rest,
		graphql:      graphql,
		limiter:      rate.NewLimiter(limit, 1),
		maxLabels:    opts.MaxLabels,
		maxFiles:     opts.MaxFiles,
		labelRetries: DefaultLabelRetries,
		sleep:        retry.Sleep,
	}
	if c.maxLabels <= 0 {
		c.maxLabels = DefaultMaxLabels
	}
	if c.maxFiles <= 0 {
		c.maxFiles = DefaultMaxFiles
	}
	if opts.LabelRetries != nil {
		c.labelRetries = *opts.LabelRetries
	}
	return c
}

// Close releases resources
func (c *Client) Close() error {
	return nil
}

// wait blocks until the proactive rate limit allows another request
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// ParseRepo splits "owner/repo" into owner and repo
func ParseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(fullRepo), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}
