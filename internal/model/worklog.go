package model

import "time"

// WorkLog records hours a user spent on a task on a given day.
type WorkLog struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	UserID      string    `json:"userId"`
	Hours       float64   `json:"hours"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (w WorkLog) GetID() string { return w.ID }

// maxHoursPerEntry caps a single entry at one day.
const maxHoursPerEntry = 24

// WorkLogInput is the payload for creating or replacing a work log.
type WorkLogInput struct {
	TaskID      string    `json:"taskId"`
	Hours       float64   `json:"hours"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (in WorkLogInput) Validate() error {
	if err := requireText("taskId", in.TaskID, 0); err != nil {
		return err
	}
	if in.Hours <= 0 {
		return invalid("hours", "hours must be positive")
	}
	if in.Hours > maxHoursPerEntry {
		return invalid("hours", "hours must not exceed %d", maxHoursPerEntry)
	}
	if in.Date.IsZero() {
		return invalid("date", "date is required")
	}
	return nil
}
