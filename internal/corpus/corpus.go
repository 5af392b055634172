// Package corpus reads and writes the tab separated training files
// produced by the download command.
package corpus

import (
	"path"
	"strings"
)

// Kind selects the column layout of a corpus file
type Kind int

const (
	// Issues files have the columns Label, Title and Body.
	Issues Kind = iota
	// PullRequests files add FileNames and FolderNames.
	PullRequests
)

var (
	issueColumns = []string{"Label", "Title", "Body"}
	pullColumns  = []string{"Label", "Title", "Body", "FileNames", "FolderNames"}
)

// Columns returns the header fields for the kind
func (k Kind) Columns() []string {
	if k == PullRequests {
		return pullColumns
	}
	return issueColumns
}

func (k Kind) String() string {
	if k == PullRequests {
		return "pull"
	}
	return "issue"
}

var sanitizer = strings.NewReplacer(
	"\r", " ",
	"\n", " ",
	"\t", " ",
	`"`, "`",
)

// Sanitize makes free text safe for a single TSV field
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// FolderNames returns the distinct parent directories of files in the
// order they first appear. Files at the repository root have none.
func FolderNames(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	var folders []string
	for _, f := range files {
		dir := path.Dir(strings.TrimPrefix(f, "/"))
		if dir == "." || dir == "/" {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		folders = append(folders, dir)
	}
	return folders
}

func joinList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = strings.ReplaceAll(Sanitize(s), " ", "")
	}
	return strings.Join(parts, " ")
}

func splitList(field string) []string {
	return strings.Fields(field)
}
