package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

type fakeItemGetter struct {
	missing map[int]bool
	calls   []int
}

func (g *fakeItemGetter) GetItem(_ context.Context, org, repo string, number int) (models.Item, error) {
	g.calls = append(g.calls, number)
	if g.missing[number] {
		return nil, errors.New("HTTP 404: Not Found")
	}
	return &models.Issue{Org: org, Repo: repo, Number: number}, nil
}

func TestFetchItemsContinuesPastFailures(t *testing.T) {
	g := &fakeItemGetter{missing: map[int]bool{2: true}}

	items, failed := fetchItems(context.Background(), g, "o", "r", []int{1, 2, 3})

	assert.Equal(t, []int{1, 2, 3}, g.calls)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Base().Number)
	assert.Equal(t, 3, items[1].Base().Number)

	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Number)
	assert.Contains(t, failed[0].Error, "404")
}

func TestLoadItemsByNumber(t *testing.T) {
	g := &fakeItemGetter{missing: map[int]bool{7: true}}
	f := &predictFlags{repo: "dotnet/runtime", numbers: []int{7, 8}}

	org, repo, items, failed, err := f.loadItems(context.Background(), g)
	require.NoError(t, err)

	assert.Equal(t, "dotnet", org)
	assert.Equal(t, "runtime", repo)
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Base().Number)
	require.Len(t, failed, 1)
	assert.Equal(t, 7, failed[0].Number)
}

func TestReportResults(t *testing.T) {
	assert.NoError(t, reportResults([]models.LabelResult{{Number: 1, Applied: "area-x"}}, 1))

	err := reportResults([]models.LabelResult{
		{Number: 1, Applied: "area-x"},
		{Number: 2, Error: "failed to get item: boom"},
	}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}
