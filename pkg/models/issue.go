package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Item is an issue or pull request fetched from GitHub.
type Item interface {
	Base() *Issue
}

// HasFiles is implemented by items that carry changed file paths
type HasFiles interface {
	Files() []string
}

// Issue represents a GitHub issue with its metadata
type Issue struct {
	Org    string   `json:"org"`
	Repo   string   `json:"repo"`
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	State  string   `json:"state"` // "open" or "closed"
	Author string   `json:"author"`
	URL    string   `json:"url"`
	Labels []string `json:"labels"`
	// HasMoreLabels is set when the server truncated the label list.
	HasMoreLabels bool      `json:"has_more_labels,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Base returns the issue itself
func (i *Issue) Base() *Issue {
	return i
}

// FullRepo returns the full repository name (org/repo)
func (i *Issue) FullRepo() string {
	return fmt.Sprintf("%s/%s", i.Org, i.Repo)
}

// HasLabel reports whether the issue carries the exact label name
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// PullRequest is an issue with the changed file paths of the PR
type PullRequest struct {
	Issue
	FileNames []string `json:"file_names"`
}

// Files returns the changed file paths
func (p *PullRequest) Files() []string {
	return p.FileNames
}

// Page is one batch of items returned by a paged query
type Page[T Item] struct {
	Nodes       []T
	EndCursor   string
	HasNextPage bool
	TotalCount  int
}

// RecordUUID generates a deterministic point ID for a labeled corpus record
func RecordUUID(collection, label, text string) string {
	data := fmt.Sprintf("%s\x00%s\x00%s", collection, label, text)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}
