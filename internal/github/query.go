package github

import (
	"context"
	"fmt"
	"time"

	"github.com/Kavirubc/gh-labeler/internal/retry"
	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Both queries page newest-created first; pagination only moves forward.
const issuesQuery = `
	query IssuePage($owner: String!, $repo: String!, $after: String, $first: Int!, $labels: Int!) {
		repository(owner: $owner, name: $repo) {
			result: issues(after: $after, first: $first, orderBy: {field: CREATED_AT, direction: DESC}) {
				nodes {
					number
					title
					body
					state
					url
					createdAt
					author { login }
					labels(first: $labels) {
						nodes { name }
						pageInfo { hasNextPage }
					}
				}
				pageInfo { hasNextPage endCursor }
				totalCount
			}
		}
	}
`

const pullRequestsQuery = `
	query PullRequestPage($owner: String!, $repo: String!, $after: String, $first: Int!, $labels: Int!, $files: Int!) {
		repository(owner: $owner, name: $repo) {
			result: pullRequests(after: $after, first: $first, orderBy: {field: CREATED_AT, direction: DESC}) {
				nodes {
					number
					title
					body
					state
					url
					createdAt
					author { login }
					labels(first: $labels) {
						nodes { name }
						pageInfo { hasNextPage }
					}
					files(first: $files) {
						nodes { path }
					}
				}
				pageInfo { hasNextPage endCursor }
				totalCount
			}
		}
	}
`

type labelConnection struct {
	Nodes []struct {
		Name string `json:"name"`
	} `json:"nodes"`
	PageInfo struct {
		HasNextPage bool `json:"hasNextPage"`
	} `json:"pageInfo"`
}

type issueNode struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *struct {
		Login string `json:"login"`
	} `json:"author"`
	Labels labelConnection `json:"labels"`
}

type pullRequestNode struct {
	issueNode
	Files *struct {
		Nodes []struct {
			Path string `json:"path"`
		} `json:"nodes"`
	} `json:"files"`
}

type connection[N any] struct {
	Nodes    []N `json:"nodes"`
	PageInfo struct {
		HasNextPage bool    `json:"hasNextPage"`
		EndCursor   *string `json:"endCursor"`
	} `json:"pageInfo"`
	TotalCount int `json:"totalCount"`
}

type pageData[N any] struct {
	Repository *struct {
		Result *connection[N] `json:"result"`
	} `json:"repository"`
}

func (n *issueNode) toModel(org, repo string) models.Issue {
	labels := make([]string, len(n.Labels.Nodes))
	for i, l := range n.Labels.Nodes {
		labels[i] = l.Name
	}

	author := ""
	if n.Author != nil {
		author = n.Author.Login
	}

	return models.Issue{
		Org:           org,
		Repo:          repo,
		Number:        n.Number,
		Title:         n.Title,
		Body:          n.Body,
		State:         stateName(n.State),
		Author:        author,
		URL:           n.URL,
		Labels:        labels,
		HasMoreLabels: n.Labels.PageInfo.HasNextPage,
		CreatedAt:     n.CreatedAt,
	}
}

func (n *pullRequestNode) toModel(org, repo string) *models.PullRequest {
	pr := &models.PullRequest{Issue: n.issueNode.toModel(org, repo)}
	if n.Files != nil {
		pr.FileNames = make([]string, len(n.Files.Nodes))
		for i, f := range n.Files.Nodes {
			pr.FileNames[i] = f.Path
		}
	}
	return pr
}

// IssuePager fetches pages of issues
type IssuePager struct {
	c *Client
}

// IssuePages returns a page fetcher for issues
func (c *Client) IssuePages() *IssuePager {
	return &IssuePager{c: c}
}

// FetchPage fetches one page of issues after the given cursor ("" for the first page)
func (p *IssuePager) FetchPage(ctx context.Context, org, repo string, pageSize int, after string) (*models.Page[*models.Issue], error) {
	vars := p.c.pageVariables(org, repo, pageSize, after)
	return fetchPage(ctx, p.c, issuesQuery, vars, org, repo, func(n issueNode) *models.Issue {
		issue := n.toModel(org, repo)
		return &issue
	})
}

// PullRequestPager fetches pages of pull requests
type PullRequestPager struct {
	c *Client
}

// PullRequestPages returns a page fetcher for pull requests
func (c *Client) PullRequestPages() *PullRequestPager {
	return &PullRequestPager{c: c}
}

// FetchPage fetches one page of pull requests after the given cursor ("" for the first page)
func (p *PullRequestPager) FetchPage(ctx context.Context, org, repo string, pageSize int, after string) (*models.Page[*models.PullRequest], error) {
	vars := p.c.pageVariables(org, repo, pageSize, after)
	vars["files"] = p.c.maxFiles
	return fetchPage(ctx, p.c, pullRequestsQuery, vars, org, repo, func(n pullRequestNode) *models.PullRequest {
		return n.toModel(org, repo)
	})
}

func (c *Client) pageVariables(org, repo string, pageSize int, after string) map[string]interface{} {
	var cursor interface{}
	if after != "" {
		cursor = after
	}

	return map[string]interface{}{
		"owner":  org,
		"repo":   repo,
		"first":  clampPageSize(pageSize),
		"after":  cursor,
		"labels": c.maxLabels,
	}
}

// fetchPage issues a single query. GraphQL errors and missing data are
// permanent; anything else is left retryable for the caller.
func fetchPage[N any, T models.Item](
	ctx context.Context, c *Client, query string, vars map[string]interface{}, org, repo string, convert func(N) T,
) (*models.Page[T], error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var data pageData[N]
	if err := c.graphql.DoWithContext(ctx, query, vars, &data); err != nil {
		err = fmt.Errorf("query %s/%s: %w", org, repo, err)
		if IsGraphQLError(err) {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	if data.Repository == nil || data.Repository.Result == nil {
		return nil, retry.Permanent(fmt.Errorf("query %s/%s: %w", org, repo, ErrMissingData))
	}

	result := data.Repository.Result
	page := &models.Page[T]{
		Nodes:       make([]T, 0, len(result.Nodes)),
		HasNextPage: result.PageInfo.HasNextPage,
		TotalCount:  result.TotalCount,
	}
	if result.PageInfo.EndCursor != nil {
		page.EndCursor = *result.PageInfo.EndCursor
	}
	for _, n := range result.Nodes {
		page.Nodes = append(page.Nodes, convert(n))
	}

	return page, nil
}

func clampPageSize(n int) int {
	if n <= 0 || n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// stateName lower-cases GraphQL enum states (OPEN, CLOSED, MERGED)
func stateName(s string) string {
	switch s {
	case "OPEN":
		return "open"
	case "CLOSED":
		return "closed"
	case "MERGED":
		return "merged"
	default:
		return s
	}
}
