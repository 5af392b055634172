package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Event represents a GitHub issues or pull_request event payload
type Event struct {
	Action      string       `json:"action"`
	Issue       *EventIssue  `json:"issue"`
	PullRequest *EventIssue  `json:"pull_request"`
	Repo        *EventRepo   `json:"repository"`
	Sender      *EventSender `json:"sender"`
}

// EventIssue represents issue or pull request data in an event
type EventIssue struct {
	Number  int          `json:"number"`
	Title   string       `json:"title"`
	Body    string       `json:"body"`
	State   string       `json:"state"`
	HTMLURL string       `json:"html_url"`
	User    *EventSender `json:"user"`
	Labels  []Label      `json:"labels"`
	// PullRequest is set on issue_comment style payloads that point at a PR
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request,omitempty"`
}

// EventRepo represents repository data in an event
type EventRepo struct {
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
}

// EventSender represents the user who triggered the event
type EventSender struct {
	Login string `json:"login"`
}

// ParseEventFile reads and parses a GitHub event JSON file
func ParseEventFile(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}

	return ParseEvent(data)
}

// ParseEvent parses a GitHub event JSON payload
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	return &event, nil
}

// ToItem converts the event payload to an issue or pull request.
// Pull requests carry no file names; callers load them separately.
func (e *Event) ToItem() models.Item {
	if e.Repo == nil {
		return nil
	}

	switch {
	case e.PullRequest != nil:
		return &models.PullRequest{Issue: *e.PullRequest.toModel(e.Repo)}
	case e.Issue != nil:
		issue := e.Issue.toModel(e.Repo)
		if e.Issue.PullRequest != nil {
			return &models.PullRequest{Issue: *issue}
		}
		return issue
	default:
		return nil
	}
}

func (ei *EventIssue) toModel(repo *EventRepo) *models.Issue {
	labels := make([]string, len(ei.Labels))
	for i, l := range ei.Labels {
		labels[i] = l.Name
	}

	author := ""
	if ei.User != nil {
		author = ei.User.Login
	}

	return &models.Issue{
		Org:    repo.Owner.Login,
		Repo:   repo.Name,
		Number: ei.Number,
		Title:  ei.Title,
		Body:   ei.Body,
		State:  ei.State,
		Labels: labels,
		Author: author,
		URL:    ei.HTMLURL,
	}
}

// IsIssueEvent checks if this is an issue event
func (e *Event) IsIssueEvent() bool {
	return e.Issue != nil && e.PullRequest == nil
}

// IsPullRequestEvent checks if this is a pull_request event
func (e *Event) IsPullRequestEvent() bool {
	return e.PullRequest != nil
}

// IsOpenedEvent checks if this is an opened event
func (e *Event) IsOpenedEvent() bool {
	return e.Action == "opened"
}

// IsReopenedEvent checks if this is a reopened event
func (e *Event) IsReopenedEvent() bool {
	return e.Action == "reopened"
}

// ShouldPredict reports whether the action is one the labeler reacts to
func (e *Event) ShouldPredict() bool {
	return e.IsOpenedEvent() || e.IsReopenedEvent()
}
