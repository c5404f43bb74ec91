package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

func userStore(users ...model.User) *state.Store[model.User] {
	s := state.NewStore[model.User]()
	s.PutAll(users)
	return s
}

func TestResolveProjectUnfetched(t *testing.T) {
	projects := state.NewStore[model.Project]()
	task := model.Task{ID: "t1", ProjectID: "p1"}

	assert.Nil(t, ResolveProject(task, projects))
	assert.Nil(t, ResolveProject(task, nil))

	projects.Put(model.Project{ID: "p1", Name: "Apollo", Status: model.ProjectActive})
	got := ResolveProject(task, projects)
	require.NotNil(t, got)
	assert.Equal(t, "Apollo", got.Name)

	projects.Remove("p1")
	assert.Nil(t, ResolveProject(task, projects), "deleted project becomes unresolved")
}

func TestResolveAssignees(t *testing.T) {
	users := userStore(model.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	task := model.Task{Assignees: []model.UserRef{{ID: "u1"}, {ID: "u9", Name: "Grace"}, {ID: "u8"}}}

	got := ResolveAssignees(task, users)
	require.Len(t, got, 3)
	assert.Equal(t, DisplayUser{ID: "u1", Name: "Ada", Email: "ada@example.com", Resolved: true}, got[0])
	assert.Equal(t, DisplayUser{ID: "u9", Name: "Grace"}, got[1])
	assert.Equal(t, DisplayUser{ID: "u8", Name: UnknownUser}, got[2])
}

func TestResolveMembersAndAuthor(t *testing.T) {
	users := userStore(model.User{ID: "u1", Name: "Ada"})
	project := model.Project{Members: []model.Member{
		{User: model.UserRef{ID: "u1"}, Role: model.RoleLeader},
		{User: model.UserRef{ID: "u2"}, Role: model.RoleQA},
	}}

	members := ResolveMembers(project, users)
	require.Len(t, members, 2)
	assert.Equal(t, "Ada", members[0].Name)
	assert.Equal(t, model.RoleLeader, members[0].Role)
	assert.False(t, members[1].Resolved)
	assert.Equal(t, UnknownUser, members[1].Name)

	author := ResolveAuthor(model.Comment{Author: model.UserRef{Name: "Imported Bot"}}, users)
	assert.Equal(t, "Imported Bot", author.Name)
	assert.False(t, author.Resolved)

	assert.Equal(t, UnknownUser, ResolveAuthor(model.Comment{}, nil).Name)
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"@ada please review, cc @grace.hopper.", []string{"ada", "grace.hopper"}},
		{"@ada @ada again", []string{"ada"}},
		{"mail me at ada@example.com", nil},
		{"no mentions", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractMentions(tt.text), tt.text)
	}
}

func TestMentionedUsers(t *testing.T) {
	users := []model.User{
		{ID: "u1", Name: "Ada Lovelace", Email: "ada@example.com"},
		{ID: "u2", Name: "Grace", Email: "ghopper@example.com"},
	}
	got := MentionedUsers("@AdaLovelace and @ghopper, not @nobody", users)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].ID)
	assert.Equal(t, "u2", got[1].ID)
}

func TestParseLink(t *testing.T) {
	assert.Equal(t, Target{Kind: "task", ID: "t1"}, ParseLink("/tasks/t1"))
	assert.Equal(t, Target{Kind: "task", ID: "t2"}, ParseLink("/projects/p1/tasks/t2?tab=comments"))
	assert.Equal(t, Target{Kind: "project", ID: "p1"}, ParseLink("https://app.example.com/projects/p1"))
	assert.Equal(t, Target{}, ParseLink("/settings"))
}
