package models

// Task is a unit of dispatch work: one persisted notification to be pushed
// through its channel. Resubmit is true when a failed notification is being
// retried, which bumps retry_count.
type Task struct {
	Notification Notification
	Resubmit     bool
}
