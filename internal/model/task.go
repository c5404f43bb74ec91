package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every task status in board-column order.
var TaskStatuses = []TaskStatus{
	StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities, higher is more urgent. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"projectId"`

	// Assignees is an ordered set; the backend may embed partial user
	// objects, only the id is authoritative.
	Assignees []UserRef `json:"assignees"`

	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (t Task) GetID() string { return t.ID }

// AssignedTo reports whether userID is among the task's assignees.
func (t Task) AssignedTo(userID string) bool {
	if userID == "" {
		return false
	}
	for _, a := range t.Assignees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// IsOverdue reports whether the task is past its end date and still open.
func (t Task) IsOverdue(now time.Time) bool {
	if t.EndDate == nil {
		return false
	}
	if t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return t.EndDate.Before(now)
}

// TaskInput is the payload for creating or replacing a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"projectId"`
	AssigneeIDs []string   `json:"assignees"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// Validate checks the payload and drops duplicate assignee ids in place.
func (in *TaskInput) Validate() error {
	if err := requireText("title", in.Title, 300); err != nil {
		return err
	}
	if err := requireText("projectId", in.ProjectID, 0); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("status", "unknown task status %q", in.Status)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return invalid("priority", "unknown priority %q", in.Priority)
	}
	in.AssigneeIDs = dedupe(in.AssigneeIDs)
	return checkRange("endDate", in.StartDate, in.EndDate)
}

// Comment belongs to exactly one task. Author is either a user reference
// or, for imported comments, just a display name.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Author    UserRef   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Comment) GetID() string { return c.ID }

// CommentInput is the payload for posting a comment.
type CommentInput struct {
	Content string `json:"content"`
}

func (in CommentInput) Validate() error {
	return requireText("content", in.Content, 5000)
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
