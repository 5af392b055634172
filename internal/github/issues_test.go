package github

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

const restIssueJSON = `{
	"number": 42,
	"title": "Timeout in HttpClient",
	"body": "Steps...",
	"state": "open",
	"html_url": "https://github.com/org/repo/issues/42",
	"user": {"login": "reporter"},
	"labels": [{"name": "untriaged"}],
	"created_at": "2024-01-02T03:04:05Z"
}`

const restPullJSON = `{
	"number": 43,
	"title": "Fix timeout",
	"body": "",
	"state": "open",
	"html_url": "https://github.com/org/repo/pull/43",
	"user": {"login": "dev"},
	"labels": [],
	"created_at": "2024-01-02T03:04:05Z",
	"pull_request": {"url": "https://api.github.com/repos/org/repo/pulls/43"}
}`

func TestGetItem_Issue(t *testing.T) {
	rest := &fakeREST{replies: []reply{{data: restIssueJSON}}}
	c, _ := newTestClient(rest, &fakeGraphQL{}, Options{})

	item, err := c.GetItem(context.Background(), "org", "repo", 42)
	require.NoError(t, err)

	issue, ok := item.(*models.Issue)
	require.True(t, ok, "expected *models.Issue, got %T", item)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, "reporter", issue.Author)
	assert.Equal(t, []string{"untriaged"}, issue.Labels)
	assert.Equal(t, "repos/org/repo/issues/42", rest.calls[0].path)
}

func TestGetItem_PullRequestLoadsFiles(t *testing.T) {
	rest := &fakeREST{replies: []reply{
		{data: restPullJSON},
		{data: `[{"filename": "src/http/client.go"}, {"filename": "src/http/client_test.go"}]`},
	}}
	c, _ := newTestClient(rest, &fakeGraphQL{}, Options{})

	item, err := c.GetItem(context.Background(), "org", "repo", 43)
	require.NoError(t, err)

	pr, ok := item.(*models.PullRequest)
	require.True(t, ok, "expected *models.PullRequest, got %T", item)
	assert.Equal(t, 43, pr.Number)
	assert.Equal(t, []string{"src/http/client.go", "src/http/client_test.go"}, pr.Files())
	require.Len(t, rest.calls, 2)
	assert.True(t, strings.HasPrefix(rest.calls[1].path, "repos/org/repo/pulls/43/files?"))
}

func TestListPullFiles_Capped(t *testing.T) {
	rest := &fakeREST{replies: []reply{
		{data: `[{"filename": "a"}, {"filename": "b"}, {"filename": "c"}]`},
	}}
	c, _ := newTestClient(rest, &fakeGraphQL{}, Options{MaxFiles: 3})

	files, err := c.ListPullFiles(context.Background(), "org", "repo", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, files)
	assert.Len(t, rest.calls, 1)
	assert.Contains(t, rest.calls[0].path, "per_page=3")
}

func TestListLabels_Paginates(t *testing.T) {
	var full strings.Builder
	full.WriteString("[")
	for i := 0; i < 100; i++ {
		if i > 0 {
			full.WriteString(",")
		}
		fmt.Fprintf(&full, `{"name": "area-%d"}`, i)
	}
	full.WriteString("]")

	rest := &fakeREST{replies: []reply{
		{data: full.String()},
		{data: `[{"name": "bug"}]`},
	}}
	c, _ := newTestClient(rest, &fakeGraphQL{}, Options{})

	names, err := c.ListLabels(context.Background(), "org", "repo")
	require.NoError(t, err)
	assert.Len(t, names, 101)
	assert.Equal(t, "bug", names[100])
	require.Len(t, rest.calls, 2)
	assert.Contains(t, rest.calls[1].path, "page=2")
}
