// Package crossref resolves references between entities (task to
// project, task to assignees, project to members, comment to author) and
// extracts references embedded in free text.
package crossref

import (
	"regexp"
	"strings"

	"github.com/nhle/project-dashboard/internal/model"
)

// UnknownUser labels a user reference that cannot be resolved.
const UnknownUser = "Unknown user"

// Lookup finds an entity by id. *state.Store satisfies it.
type Lookup[T any] interface {
	Get(id string) (T, bool)
}

// DisplayUser is a user reference ready for rendering. Resolved is false
// when the user is not in the user store; Name then falls back to the
// name embedded in the reference or UnknownUser.
type DisplayUser struct {
	ID       string
	Name     string
	Email    string
	Resolved bool
}

// DisplayMember is a resolved project member.
type DisplayMember struct {
	DisplayUser
	Role model.MemberRole
}

// DisplayProject is the subset of a project a task view shows.
type DisplayProject struct {
	ID     string
	Name   string
	Status model.ProjectStatus
}

// ResolveUser resolves one reference. It never fails.
func ResolveUser(ref model.UserRef, users Lookup[model.User]) DisplayUser {
	if ref.ID != "" && users != nil {
		if u, ok := users.Get(ref.ID); ok {
			return DisplayUser{ID: u.ID, Name: u.Name, Email: u.Email, Resolved: true}
		}
	}
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		name = UnknownUser
	}
	return DisplayUser{ID: ref.ID, Name: name}
}

// ResolveAssignees resolves a task's assignees in task order.
func ResolveAssignees(task model.Task, users Lookup[model.User]) []DisplayUser {
	out := make([]DisplayUser, 0, len(task.Assignees))
	for _, ref := range task.Assignees {
		out = append(out, ResolveUser(ref, users))
	}
	return out
}

// ResolveProject returns the task's project, or nil when the project is
// not cached (not fetched yet, or deleted).
func ResolveProject(task model.Task, projects Lookup[model.Project]) *DisplayProject {
	if task.ProjectID == "" || projects == nil {
		return nil
	}
	p, ok := projects.Get(task.ProjectID)
	if !ok {
		return nil
	}
	return &DisplayProject{ID: p.ID, Name: p.Name, Status: p.Status}
}

// ResolveMembers resolves a project's members in project order.
func ResolveMembers(project model.Project, users Lookup[model.User]) []DisplayMember {
	out := make([]DisplayMember, 0, len(project.Members))
	for _, m := range project.Members {
		out = append(out, DisplayMember{DisplayUser: ResolveUser(m.User, users), Role: m.Role})
	}
	return out
}

// ResolveAuthor resolves a comment's author.
func ResolveAuthor(c model.Comment, users Lookup[model.User]) DisplayUser {
	return ResolveUser(c.Author, users)
}

// mentionPattern matches @handles in comment text.
var mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9][A-Za-z0-9._-]*)`)

// ExtractMentions returns the @handles in text, deduplicated and in
// order of first occurrence.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		h := strings.TrimRight(m[1], ".")
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		result = append(result, h)
	}
	return result
}

// MentionedUsers matches handles from ExtractMentions against users by
// case-insensitive name with spaces removed, or by email local part.
func MentionedUsers(text string, users []model.User) []model.User {
	handles := ExtractMentions(text)
	if len(handles) == 0 {
		return nil
	}
	var out []model.User
	for _, h := range handles {
		key := strings.ToLower(h)
		for _, u := range users {
			name := strings.ToLower(strings.ReplaceAll(u.Name, " ", ""))
			local, _, _ := strings.Cut(strings.ToLower(u.Email), "@")
			if key == name || (local != "" && key == local) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// Target is the entity a notification link points at.
type Target struct {
	Kind string // "task", "project" or "" when unrecognised
	ID   string
}

// linkPattern matches notification deep links such as "/tasks/t1" or
// "/projects/p1/tasks/t2"; the last recognised segment wins.
var linkPattern = regexp.MustCompile(`/(tasks|projects)/([^/?#]+)`)

// ParseLink extracts the target of a notification link.
func ParseLink(link string) Target {
	matches := linkPattern.FindAllStringSubmatch(link, -1)
	if len(matches) == 0 {
		return Target{}
	}
	last := matches[len(matches)-1]
	return Target{Kind: strings.TrimSuffix(last[1], "s"), ID: last[2]}
}
