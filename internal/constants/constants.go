package constants

// ContextKeyUserID is the gin context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// DeadlineLayout is the wire format for task deadlines.
const DeadlineLayout = "2006-01-02"

// TasksPerPage is the fixed page size of the paginated task listing.
const TasksPerPage = 5

// DefaultTaskPriority is applied when a task is created without a priority.
const DefaultTaskPriority = "Low"

// ProgressMin and ProgressMax bound the task progress value.
const (
	ProgressMin = 0
	ProgressMax = 100
)

// DeadlineReminderWindow is how far ahead the notification scan looks for
// upcoming deadlines.
const DeadlineReminderWindow = 24 // hours
