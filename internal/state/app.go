package state

import (
	"sync"

	"github.com/nhle/project-dashboard/internal/model"
)

// AppState bundles the process-wide stores. It is created once by the
// entry point and passed explicitly to coordinators and views.
type AppState struct {
	Projects      *Store[model.Project]
	Tasks         *Store[model.Task]
	Users         *Store[model.User]
	Notifications *Store[model.Notification]
	WorkLogs      *Store[model.WorkLog]
	Profile       *Store[model.Profile]

	// PendingMembers holds member additions awaiting server confirmation,
	// scoped by project id.
	PendingMembers *Pending[model.Member]

	mu       sync.RWMutex
	comments map[string]*Store[model.Comment]
	viewer   model.User
}

// New returns an AppState with empty stores.
func New() *AppState {
	return &AppState{
		Projects:       NewStore[model.Project](),
		Tasks:          NewStore[model.Task](),
		Users:          NewStore[model.User](),
		Notifications:  NewStore[model.Notification](),
		WorkLogs:       NewStore[model.WorkLog](),
		Profile:        NewStore[model.Profile](),
		PendingMembers: NewPending[model.Member](),
		comments:       make(map[string]*Store[model.Comment]),
	}
}

// Comments returns the comment store for a task, creating it on first use.
func (a *AppState) Comments(taskID string) *Store[model.Comment] {
	a.mu.RLock()
	s, ok := a.comments[taskID]
	a.mu.RUnlock()
	if ok {
		return s
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok = a.comments[taskID]; ok {
		return s
	}
	s = NewStore[model.Comment]()
	a.comments[taskID] = s
	return s
}

// DropComments forgets the comment store of a deleted task.
func (a *AppState) DropComments(taskID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.comments, taskID)
}

// Viewer returns the signed-in user. The zero User means nobody is
// signed in yet.
func (a *AppState) Viewer() model.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.viewer
}

func (a *AppState) SetViewer(u model.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.viewer = u
}

// Reset empties every store, used on logout.
func (a *AppState) Reset() {
	a.Projects.Reset()
	a.Tasks.Reset()
	a.Users.Reset()
	a.Notifications.Reset()
	a.WorkLogs.Reset()
	a.Profile.Reset()
	a.PendingMembers.Clear()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.comments = make(map[string]*Store[model.Comment])
	a.viewer = model.User{}
}
