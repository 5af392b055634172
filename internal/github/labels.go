package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Kavirubc/gh-labeler/internal/retry"
)

// AddLabel adds a label to an issue or pull request. Transient failures
// are retried with the client's label schedule; the final error is
// returned so batch callers can carry on with other items.
func (c *Client) AddLabel(ctx context.Context, org, repo string, number int, label string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels", org, repo, number)

	payload := map[string][]string{"labels": {label}}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = c.mutateLabel(ctx, func() error {
		if err := c.wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		return classifyREST(c.rest.DoWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody), nil))
	})
	if err != nil {
		return fmt.Errorf("failed to add label %q to %s/%s#%d: %w", label, org, repo, number, err)
	}
	return nil
}

// RemoveLabel removes a label from an issue or pull request. Removing a
// label that is not present is not an error.
func (c *Client) RemoveLabel(ctx context.Context, org, repo string, number int, label string) error {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels/%s", org, repo, number, url.PathEscape(label))

	err := c.mutateLabel(ctx, func() error {
		if err := c.wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		err := c.rest.DoWithContext(ctx, http.MethodDelete, endpoint, nil, nil)
		if IsNotFound(err) {
			return nil
		}
		return classifyREST(err)
	})
	if err != nil {
		return fmt.Errorf("failed to remove label %q from %s/%s#%d: %w", label, org, repo, number, err)
	}
	return nil
}

func (c *Client) mutateLabel(ctx context.Context, fn func() error) error {
	attempt := 0
	return retry.Do(ctx, c.labelRetries, c.sleep, func() error {
		err := fn()
		if err != nil && !retry.IsPermanent(err) {
			if delay, ok := c.labelRetries.Delay(attempt); ok {
				slog.Warn("label update failed, retrying", "error", err, "delay", delay)
			}
		}
		attempt++
		return err
	})
}
