package coordinator

import (
	"context"

	"github.com/nhle/project-dashboard/internal/model"
	"github.com/nhle/project-dashboard/internal/state"
)

type CommentAPI interface {
	ListComments(ctx context.Context, taskID string) ([]model.Comment, error)
	AddComment(ctx context.Context, taskID string, in model.CommentInput) (model.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID string) error
}

// Comments coordinates the per-task comment stores. Comments are not
// persisted between runs.
type Comments struct {
	api   CommentAPI
	state *state.AppState
	base
}

func (c *Comments) FetchAll(ctx context.Context, taskID string) ([]model.Comment, error) {
	return fetchList(ctx, c.base, c.state.Comments(taskID), "comment", "",
		func(ctx context.Context) ([]model.Comment, error) { return c.api.ListComments(ctx, taskID) })
}

// Add posts a comment on taskID and appends the server's copy.
func (c *Comments) Add(ctx context.Context, taskID string, in model.CommentInput) (model.Comment, error) {
	if err := c.validate("create", "comment", "", in); err != nil {
		return model.Comment{}, err
	}
	cm, err := c.api.AddComment(ctx, taskID, in)
	if err != nil {
		return model.Comment{}, c.fail("create", "comment", "", err)
	}
	c.state.Comments(taskID).Put(cm)
	return cm, nil
}

func (c *Comments) Remove(ctx context.Context, taskID, commentID string) error {
	if err := c.api.DeleteComment(ctx, taskID, commentID); err != nil {
		return c.fail("delete", "comment", commentID, err)
	}
	c.state.Comments(taskID).Remove(commentID)
	return nil
}
