package github

import (
	"errors"
	"context"
	"testing"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-labeler/internal/retry"
)

const issuePageJSON = `{
	"repository": {
		"result": {
			"nodes": [
				{
					"number": 12,
					"title": "Crash on start",
					"body": "It crashes",
					"state": "OPEN",
					"url": "https://github.com/org/repo/issues/12",
					"createdAt": "2024-05-01T10:00:00Z",
					"author": {"login": "octocat"},
					"labels": {"nodes": [{"name": "area-foo"}, {"name": "bug"}], "pageInfo": {"hasNextPage": false}}
				},
				{
					"number": 11,
					"title": "Ghost author",
					"body": "",
					"state": "CLOSED",
					"url": "https://github.com/org/repo/issues/11",
					"createdAt": "2024-04-01T10:00:00Z",
					"author": null,
					"labels": {"nodes": [{"name": "area-bar"}], "pageInfo": {"hasNextPage": true}}
				}
			],
			"pageInfo": {"hasNextPage": true, "endCursor": "Y3Vyc29yOjI="},
			"totalCount": 40
		}
	}
}`

const pullPageJSON = `{
	"repository": {
		"result": {
			"nodes": [
				{
					"number": 7,
					"title": "Fix parser",
					"body": "Fixes #3",
					"state": "MERGED",
					"url": "https://github.com/org/repo/pull/7",
					"createdAt": "2024-05-02T10:00:00Z",
					"author": {"login": "dev"},
					"labels": {"nodes": [{"name": "area-parser"}], "pageInfo": {"hasNextPage": false}},
					"files": {"nodes": [{"path": "src/parser/lex.go"}, {"path": "README.md"}]}
				}
			],
			"pageInfo": {"hasNextPage": false, "endCursor": null},
			"totalCount": 1
		}
	}
}`

func TestIssuePager_FetchPage(t *testing.T) {
	gql := &fakeGraphQL{replies: []reply{{data: issuePageJSON}}}
	c, _ := newTestClient(&fakeREST{}, gql, Options{})

	page, err := c.IssuePages().FetchPage(context.Background(), "org", "repo", 2, "")
	require.NoError(t, err)

	assert.True(t, page.HasNextPage)
	assert.Equal(t, "Y3Vyc29yOjI=", page.EndCursor)
	assert.Equal(t, 40, page.TotalCount)
	require.Len(t, page.Nodes, 2)

	first := page.Nodes[0]
	assert.Equal(t, 12, first.Number)
	assert.Equal(t, "org", first.Org)
	assert.Equal(t, "repo", first.Repo)
	assert.Equal(t, "open", first.State)
	assert.Equal(t, "octocat", first.Author)
	assert.Equal(t, []string{"area-foo", "bug"}, first.Labels)
	assert.False(t, first.HasMoreLabels)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt)

	second := page.Nodes[1]
	assert.Empty(t, second.Author)
	assert.True(t, second.HasMoreLabels)

	require.Len(t, gql.vars, 1)
	assert.Equal(t, "org", gql.vars[0]["owner"])
	assert.Equal(t, "repo", gql.vars[0]["repo"])
	assert.Equal(t, 2, gql.vars[0]["first"])
	assert.Nil(t, gql.vars[0]["after"])
	assert.Equal(t, DefaultMaxLabels, gql.vars[0]["labels"])
	assert.Contains(t, gql.queries[0], "orderBy: {field: CREATED_AT, direction: DESC}")
}

func TestIssuePager_FetchPage_CursorAndClamp(t *testing.T) {
	gql := &fakeGraphQL{replies: []reply{{data: issuePageJSON}}}
	c, _ := newTestClient(&fakeREST{}, gql, Options{MaxLabels: 10})

	_, err := c.IssuePages().FetchPage(context.Background(), "org", "repo", 500, "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", gql.vars[0]["after"])
	assert.Equal(t, MaxPageSize, gql.vars[0]["first"])
	assert.Equal(t, 10, gql.vars[0]["labels"])
}

func TestPullRequestPager_FetchPage(t *testing.T) {
	gql := &fakeGraphQL{replies: []reply{{data: pullPageJSON}}}
	c, _ := newTestClient(&fakeREST{}, gql, Options{})

	page, err := c.PullRequestPages().FetchPage(context.Background(), "org", "repo", 50, "")
	require.NoError(t, err)

	assert.False(t, page.HasNextPage)
	assert.Empty(t, page.EndCursor)
	require.Len(t, page.Nodes, 1)

	pr := page.Nodes[0]
	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, "merged", pr.State)
	assert.Equal(t, []string{"area-parser"}, pr.Labels)
	assert.Equal(t, []string{"src/parser/lex.go", "README.md"}, pr.Files())

	assert.Equal(t, DefaultMaxFiles, gql.vars[0]["files"])
	assert.Contains(t, gql.queries[0], "files(first: $files)")
	assert.Contains(t, gql.queries[0], "pullRequests(")
}

func TestFetchPage_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		reply     reply
		permanent bool
		check     func(t *testing.T, err error)
	}{
		{
			name: "graphql errors array is fatal",
			reply: reply{err: &api.GraphQLError{Errors: []api.GraphQLErrorItem{
				{Message: "Could not resolve to a Repository with the name 'org/nope'."},
			}}},
			permanent: true,
			check: func(t *testing.T, err error) {
				assert.True(t, IsGraphQLError(err))
			},
		},
		{
			name:      "missing repository is fatal",
			reply:     reply{data: `{"repository": null}`},
			permanent: true,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingData)
			},
		},
		{
			name:      "missing result is fatal",
			reply:     reply{data: `{"repository": {}}`},
			permanent: true,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingData)
			},
		},
		{
			name:      "http error is retryable",
			reply:     reply{err: httpError(502, "Bad Gateway")},
			permanent: false,
		},
		{
			name:      "transport error is retryable",
			reply:     reply{err: errors.New("read tcp: connection reset by peer")},
			permanent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gql := &fakeGraphQL{replies: []reply{tt.reply}}
			c, _ := newTestClient(&fakeREST{}, gql, Options{})

			page, err := c.IssuePages().FetchPage(context.Background(), "org", "nope", 10, "")
			require.Error(t, err)
			assert.Nil(t, page)
			assert.Equal(t, tt.permanent, retry.IsPermanent(err))
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestParseRepo(t *testing.T) {
	org, repo, err := ParseRepo("dotnet/runtime")
	require.NoError(t, err)
	assert.Equal(t, "dotnet", org)
	assert.Equal(t, "runtime", repo)

	for _, bad := range []string{"", "dotnet", "dotnet/", "/runtime", "a/b/c"} {
		_, _, err := ParseRepo(bad)
		assert.Error(t, err, "ParseRepo(%q)", bad)
	}
}
