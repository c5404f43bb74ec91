package selector

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/project-dashboard/internal/model"
)

// SortOrder orders projects by creation time.
type SortOrder string

const (
	NewestFirst SortOrder = "desc"
	OldestFirst SortOrder = "asc"
)

// ProjectFilter narrows a project list. Criteria combine with AND.
type ProjectFilter struct {
	Status string // project status or All
	Query  string // case-insensitive substring of the name
	From   *time.Time
	To     *time.Time
	Member string    // only projects with this user as member
	Sort   SortOrder // empty keeps input order
}

// FilterProjects returns the projects matching f. A project matches a
// date range when its own [start, end] span overlaps it; open-ended
// spans extend to infinity.
func FilterProjects(projects []model.Project, f ProjectFilter) []model.Project {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if active(f.Status) && string(p.Status) != f.Status {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if !overlaps(p.StartDate, p.EndDate, f.From, f.To) {
			continue
		}
		if f.Member != "" && !p.HasMember(f.Member) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case OldestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case NewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func overlaps(start, end, from, to *time.Time) bool {
	if from != nil && end != nil && end.Before(*from) {
		return false
	}
	if to != nil && start != nil && start.After(*to) {
		return false
	}
	return true
}

// ProjectsByID indexes projects for lookups from tasks.
func ProjectsByID(projects []model.Project) map[string]model.Project {
	out := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		out[p.ID] = p
	}
	return out
}
