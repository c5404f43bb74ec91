package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/project-dashboard/internal/apperr"
	"github.com/nhle/project-dashboard/internal/model"
)

// ProjectQuery narrows a project listing. Zero values are omitted.
type ProjectQuery struct {
	Status string
	Search string
	Sort   string // "asc" or "desc" by creation date
	Page   int
	Limit  int
}

func (q ProjectQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ProjectPage is one page of a project listing in server order.
type ProjectPage struct {
	Projects []model.Project
	Total    int
	Page     int
}

// ListProjects retrieves a page of projects. The backend returns either a
// bare array or {"projects": [...], "pagination": {...}}.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (*ProjectPage, error) {
	resp, err := c.get(ctx, "/projects", q.values())
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects, err := decodeList[model.Project](resp, "projects")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	page := &ProjectPage{Projects: projects, Total: len(projects), Page: q.Page}
	var meta struct {
		Pagination *struct {
			Total int `json:"total"`
			Page  int `json:"page"`
		} `json:"pagination"`
	}
	if json.Unmarshal(resp.data, &meta) == nil && meta.Pagination != nil {
		page.Total = meta.Pagination.Total
		page.Page = meta.Pagination.Page
	}
	return page, nil
}

// GetProject retrieves a single project with its members.
func (c *Client) GetProject(ctx context.Context, id string) (model.Project, error) {
	if err := requireID("projectId", id); err != nil {
		return model.Project{}, err
	}
	resp, err := c.get(ctx, "/projects/"+escape(id), nil)
	if err != nil {
		return model.Project{}, fmt.Errorf("getting project %s: %w", id, err)
	}
	return decodeOne[model.Project](resp)
}

// CreateProject creates a project and returns the server's canonical copy.
func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	resp, err := c.post(ctx, "/projects", in)
	if err != nil {
		return model.Project{}, fmt.Errorf("creating project: %w", err)
	}
	return decodeOne[model.Project](resp)
}

// UpdateProject replaces a project's editable fields.
func (c *Client) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (model.Project, error) {
	if err := requireID("projectId", id); err != nil {
		return model.Project{}, err
	}
	resp, err := c.put(ctx, "/projects/"+escape(id), in)
	if err != nil {
		return model.Project{}, fmt.Errorf("updating project %s: %w", id, err)
	}
	return decodeOne[model.Project](resp)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if err := requireID("projectId", id); err != nil {
		return err
	}
	if _, err := c.delete(ctx, "/projects/"+escape(id)); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// AddMembers adds users to a project and returns the updated project.
func (c *Client) AddMembers(ctx context.Context, projectID string, members []model.MemberInput) (model.Project, error) {
	if err := requireID("projectId", projectID); err != nil {
		return model.Project{}, err
	}
	if len(members) == 0 {
		return model.Project{}, apperr.Validation("members", "at least one member is required")
	}
	body := map[string]any{"members": members}
	resp, err := c.post(ctx, "/projects/"+escape(projectID)+"/members", body)
	if err != nil {
		return model.Project{}, fmt.Errorf("adding members to project %s: %w", projectID, err)
	}
	return decodeOne[model.Project](resp)
}

// UpdateMember changes one member's role and returns the updated project.
func (c *Client) UpdateMember(ctx context.Context, projectID, userID string, role model.MemberRole) (model.Project, error) {
	if err := requireID("projectId", projectID); err != nil {
		return model.Project{}, err
	}
	if err := requireID("userId", userID); err != nil {
		return model.Project{}, err
	}
	path := "/projects/" + escape(projectID) + "/members/" + escape(userID)
	resp, err := c.put(ctx, path, map[string]any{"role": role})
	if err != nil {
		return model.Project{}, fmt.Errorf("updating member %s of project %s: %w", userID, projectID, err)
	}
	return decodeOne[model.Project](resp)
}

// RemoveMember removes a user from a project and returns the updated project.
func (c *Client) RemoveMember(ctx context.Context, projectID, userID string) (model.Project, error) {
	if err := requireID("projectId", projectID); err != nil {
		return model.Project{}, err
	}
	if err := requireID("userId", userID); err != nil {
		return model.Project{}, err
	}
	resp, err := c.delete(ctx, "/projects/"+escape(projectID)+"/members/"+escape(userID))
	if err != nil {
		return model.Project{}, fmt.Errorf("removing member %s from project %s: %w", userID, projectID, err)
	}
	return decodeOne[model.Project](resp)
}
