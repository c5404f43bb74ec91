package model

import (
	"encoding/json"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every known project status in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled,
}

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// MemberRole is the role a user holds inside one project.
type MemberRole string

const (
	RoleStaff     MemberRole = "staff"
	RoleLeader    MemberRole = "leader"
	RoleTeamLead  MemberRole = "team_lead"
	RoleDeveloper MemberRole = "developer"
	RoleTester    MemberRole = "tester"
	RoleDesigner  MemberRole = "designer"
	RoleQA        MemberRole = "qa"
)

// MemberRoles lists every known member role.
var MemberRoles = []MemberRole{
	RoleStaff, RoleLeader, RoleTeamLead, RoleDeveloper, RoleTester, RoleDesigner, RoleQA,
}

// Valid reports whether r is a known member role.
func (r MemberRole) Valid() bool {
	for _, v := range MemberRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Member is a user's membership in exactly one project.
type Member struct {
	User UserRef    `json:"user"`
	Role MemberRole `json:"role"`
}

// GetID keys a member by its user so members can be tracked per project.
func (m Member) GetID() string { return m.User.ID }

// Project groups tasks and members. Progress and the task counts are
// computed by the server and only ever displayed by the client.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	Members     []Member      `json:"members"`
	Progress    int           `json:"progress"`
	TotalTasks  int           `json:"totalTasks"`
	DoneTasks   int           `json:"completedTasks"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (p Project) GetID() string { return p.ID }

// UnmarshalJSON accepts the legacy "title" key some endpoints still send
// in place of "name".
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var aux struct {
		plain
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Project(aux.plain)
	if p.Name == "" {
		p.Name = aux.Title
	}
	return nil
}

// HasMember reports whether userID is a member of the project.
func (p Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}

// ProjectInput is the payload for creating or replacing a project.
type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
}

// Validate checks the payload before it is sent.
func (in ProjectInput) Validate() error {
	if err := requireText("name", in.Name, 200); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("status", "unknown project status %q", in.Status)
	}
	return checkRange("endDate", in.StartDate, in.EndDate)
}

// MemberInput adds one user to a project.
type MemberInput struct {
	UserID string     `json:"userId"`
	Role   MemberRole `json:"role"`
}

func (in MemberInput) Validate() error {
	if err := requireText("userId", in.UserID, 0); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return invalid("role", "unknown member role %q", in.Role)
	}
	return nil
}
