package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/api"
	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/cache"
	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type ProjectAPI interface {
	ListProjects(ctx context.Context, q api.ProjectQuery) (*api.ProjectPage, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error)
	UpdateProject(ctx context.Context, id string, in model.ProjectInput) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddMembers(ctx context.Context, projectID string, members []model.MemberInput) (model.Project, error)
	UpdateMember(ctx context.Context, projectID, userID string, role model.MemberRole) (model.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) (model.Project, error)
}

// Projects coordinates the project store and member sub-resources.
type Projects struct {
	api   ProjectAPI
	state *state.AppState
	base
}

// FetchAll replaces the project list with one server page.
func (c *Projects) FetchAll(ctx context.Context, q api.ProjectQuery) (*api.ProjectPage, error) {
	var page *api.ProjectPage
	_, err := fetchList(ctx, c.base, c.state.Projects, "project", cache.KindProjects,
		func(ctx context.Context) ([]model.Project, error) {
			p, err := c.api.ListProjects(ctx, q)
			if err != nil {
				return nil, err
			}
			page = p
			return p.Projects, nil
		})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FetchByID loads one project into the detail slot.
func (c *Projects) FetchByID(ctx context.Context, id string) (model.Project, error) {
	return fetchDetail(ctx, c.base, c.state.Projects, "project", id, c.api.GetProject)
}

// Create validates in and inserts the server's project on success.
func (c *Projects) Create(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if err := c.validate("create", "project", "", in); err != nil {
		return model.Project{}, err
	}
	p, err := c.api.CreateProject(ctx, in)
	if err != nil {
		return model.Project{}, c.fail("create", "project", "", err)
	}
	c.apply(ctx, p)
	return p, nil
}

// Update replaces the project with the server's full record.
func (c *Projects) Update(ctx context.Context, id string, in model.ProjectInput) (model.Project, error) {
	if err := c.validate("update", "project", id, in); err != nil {
		return model.Project{}, err
	}
	p, err := c.api.UpdateProject(ctx, id, in)
	if err != nil {
		return model.Project{}, c.fail("update", "project", id, err)
	}
	c.apply(ctx, p)
	return p, nil
}

// Remove deletes the project. Tasks referencing it stay cached and
// resolve to no project.
func (c *Projects) Remove(ctx context.Context, id string) error {
	if err := c.api.DeleteProject(ctx, id); err != nil {
		return c.fail("delete", "project", id, err)
	}
	c.state.Projects.Remove(id)
	c.state.PendingMembers.Forget(id)
	c.forget(ctx, cache.KindProjects, id)
	return nil
}

// AddMembers shows the additions as pending while the request is in
// flight, then replaces the project with the server's record or rolls
// the pending entries back.
func (c *Projects) AddMembers(ctx context.Context, projectID string, members []model.MemberInput) (model.Project, error) {
	if len(members) == 0 {
		return model.Project{}, c.fail("add members", "project", projectID,
			apperr.Validation("members", "at least one member is required"))
	}
	pending := make([]model.Member, 0, len(members))
	for _, m := range members {
		if err := c.validate("add members", "project", projectID, m); err != nil {
			return model.Project{}, err
		}
		ref := model.UserRef{ID: m.UserID}
		if u, ok := c.state.Users.Get(m.UserID); ok {
			ref.Name = u.Name
		}
		pending = append(pending, model.Member{User: ref, Role: m.Role})
	}

	corr := c.state.PendingMembers.Add(projectID, pending...)
	p, err := c.api.AddMembers(ctx, projectID, members)
	if err != nil {
		c.state.PendingMembers.Rollback(projectID, corr)
		return model.Project{}, c.fail("add members", "project", projectID, err)
	}
	c.apply(ctx, p)
	c.state.PendingMembers.Settle(projectID, corr)
	return p, nil
}

// UpdateMember changes a member's role.
func (c *Projects) UpdateMember(ctx context.Context, projectID, userID string, role model.MemberRole) (model.Project, error) {
	if !role.Valid() {
		return model.Project{}, c.fail("update member", "project", projectID,
			apperr.Validation("role", "unknown member role "+string(role)))
	}
	p, err := c.api.UpdateMember(ctx, projectID, userID, role)
	if err != nil {
		return model.Project{}, c.fail("update member", "project", projectID, err)
	}
	c.apply(ctx, p)
	return p, nil
}

// RemoveMember removes a user from the project.
func (c *Projects) RemoveMember(ctx context.Context, projectID, userID string) (model.Project, error) {
	p, err := c.api.RemoveMember(ctx, projectID, userID)
	if err != nil {
		return model.Project{}, c.fail("remove member", "project", projectID, err)
	}
	c.apply(ctx, p)
	return p, nil
}

// Members returns the project's confirmed members followed by additions
// still awaiting the server.
func (c *Projects) Members(projectID string) []state.Tracked[model.Member] {
	var confirmed []model.Member
	if p, ok := c.state.Projects.Get(projectID); ok {
		confirmed = p.Members
	} else if p, ok := c.state.Projects.Current(); ok && p.ID == projectID {
		confirmed = p.Members
	}
	return state.Merge(confirmed, c.state.PendingMembers.List(projectID))
}

func (c *Projects) apply(ctx context.Context, p model.Project) {
	c.state.Projects.Put(p)
	saveOne(ctx, c.base, cache.KindProjects, p)
}
