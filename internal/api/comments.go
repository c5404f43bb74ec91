package api

import (
	"context"
	"fmt"

	"github.com/nhle/project-dashboard/internal/model"
)

// ListComments retrieves the comment thread of a task, oldest first.
func (c *Client) ListComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	if err := requireID("taskId", taskID); err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, "/comments/"+escape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("listing comments of task %s: %w", taskID, err)
	}
	return decodeList[model.Comment](resp, "comments")
}

// AddComment posts a comment on a task.
func (c *Client) AddComment(ctx context.Context, taskID string, in model.CommentInput) (model.Comment, error) {
	if err := requireID("taskId", taskID); err != nil {
		return model.Comment{}, err
	}
	resp, err := c.post(ctx, "/comments/"+escape(taskID), in)
	if err != nil {
		return model.Comment{}, fmt.Errorf("adding comment to task %s: %w", taskID, err)
	}
	return decodeOne[model.Comment](resp)
}

// DeleteComment removes one comment from a task.
func (c *Client) DeleteComment(ctx context.Context, taskID, commentID string) error {
	if err := requireID("taskId", taskID); err != nil {
		return err
	}
	if err := requireID("commentId", commentID); err != nil {
		return err
	}
	if _, err := c.delete(ctx, "/comments/"+escape(taskID)+"/"+escape(commentID)); err != nil {
		return fmt.Errorf("deleting comment %s: %w", commentID, err)
	}
	return nil
}
