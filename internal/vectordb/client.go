package vectordb

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Kavirubc/gh-labeler/internal/config"
)

const defaultGRPCPort = 6334

// Client wraps Qdrant operations on label collections
type Client struct {
	qdrant *qdrant.Client
}

// NewClient creates a new Qdrant client
func NewClient(cfg *config.QdrantConfig) (*Client, error) {
	host, port, useTLS, err := parseEndpoint(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &Client{qdrant: client}, nil
}

// parseEndpoint splits a Qdrant URL into its gRPC host and port. https
// and Qdrant Cloud hosts use TLS.
func parseEndpoint(raw string) (string, int, bool, error) {
	if raw == "" {
		return "", 0, false, fmt.Errorf("qdrant url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid qdrant url: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("invalid qdrant url %q: missing host", raw)
	}

	port := defaultGRPCPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return "", 0, false, fmt.Errorf("invalid qdrant port %q", p)
		}
	}

	useTLS := u.Scheme == "https" || strings.HasSuffix(host, ".qdrant.io") || strings.HasSuffix(host, ".qdrant.tech")
	return host, port, useTLS, nil
}

// Close closes the connection
func (c *Client) Close() error {
	if c.qdrant != nil {
		return c.qdrant.Close()
	}
	return nil
}

// CollectionName returns the label collection for a repository
func CollectionName(org, repo string) string {
	return strings.ToLower(fmt.Sprintf("%s_%s_labels", org, repo))
}
