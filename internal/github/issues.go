package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Issue represents a GitHub issue from the REST API
type Issue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	HTMLURL     string    `json:"html_url"`
	User        User      `json:"user"`
	Labels      []Label   `json:"labels"`
	CreatedAt   time.Time `json:"created_at"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// Label represents a GitHub label
type Label struct {
	Name string `json:"name"`
}

type pullFile struct {
	Filename string `json:"filename"`
}

// ToModel converts API Issue to models.Issue
func (i *Issue) ToModel(org, repo string) *models.Issue {
	labels := make([]string, len(i.Labels))
	for j, l := range i.Labels {
		labels[j] = l.Name
	}

	return &models.Issue{
		Org:       org,
		Repo:      repo,
		Number:    i.Number,
		Title:     i.Title,
		Body:      i.Body,
		State:     i.State,
		Labels:    labels,
		Author:    i.User.Login,
		URL:       i.HTMLURL,
		CreatedAt: i.CreatedAt,
	}
}

// IsPullRequest reports whether the issues endpoint returned a PR
func (i *Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

// GetItem fetches a single issue or pull request by number. Pull
// requests come back with their changed files loaded.
func (c *Client) GetItem(ctx context.Context, org, repo string, number int) (models.Item, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d", org, repo, number)

	var ai Issue
	if err := c.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, &ai); err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	issue := ai.ToModel(org, repo)
	if !ai.IsPullRequest() {
		return issue, nil
	}

	files, err := c.ListPullFiles(ctx, org, repo, number)
	if err != nil {
		return nil, err
	}
	return &models.PullRequest{Issue: *issue, FileNames: files}, nil
}

// ListPullFiles fetches the changed file paths of a pull request, up to
// the client's file cap.
func (c *Client) ListPullFiles(ctx context.Context, org, repo string, number int) ([]string, error) {
	perPage := c.maxFiles
	if perPage > 100 {
		perPage = 100
	}

	var files []string
	for page := 1; len(files) < c.maxFiles; page++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("repos/%s/%s/pulls/%d/files?%s", org, repo, number, params.Encode())

		var batch []pullFile
		if err := c.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, &batch); err != nil {
			return nil, fmt.Errorf("failed to list pull request files: %w", err)
		}

		for _, f := range batch {
			if len(files) == c.maxFiles {
				break
			}
			files = append(files, f.Filename)
		}

		if len(batch) < perPage {
			break
		}
	}

	return files, nil
}

// ListLabels fetches every label name defined in a repository
func (c *Client) ListLabels(ctx context.Context, org, repo string) ([]string, error) {
	var names []string
	perPage := 100

	for page := 1; ; page++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		endpoint := fmt.Sprintf("repos/%s/%s/labels?%s", org, repo, params.Encode())

		var labels []Label
		if err := c.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, &labels); err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}

		for _, l := range labels {
			names = append(names, l.Name)
		}

		if len(labels) < perPage {
			break
		}
	}

	return names, nil
}
