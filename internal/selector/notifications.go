package selector

import (
	"sort"

	"github.com/nhle/project-dashboard/internal/model"
)

// UnreadCount returns how many notifications are unread.
func UnreadCount(ns []model.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}

// SortNotifications returns a copy ordered newest first. Ties keep their
// input order.
func SortNotifications(ns []model.Notification) []model.Notification {
	out := append([]model.Notification(nil), ns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UnreadOnly returns the unread notifications in input order.
func UnreadOnly(ns []model.Notification) []model.Notification {
	out := make([]model.Notification, 0, len(ns))
	for _, n := range ns {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}
