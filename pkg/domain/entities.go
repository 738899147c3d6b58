// Package domain defines the persistent entities, value types, patch types,
// and rule evaluation primitives shared by the hostelcore engine.
package domain

import "time"

// EntityType identifies the kind of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence collections.
const (
	// EntityUser identifies a staff/volunteer record.
	EntityUser EntityType = "user"
	// EntityTask identifies a task record.
	EntityTask EntityType = "task"
	// EntityEvent identifies an event record.
	EntityEvent EntityType = "event"
	// EntityMessage identifies a message record.
	EntityMessage EntityType = "message"
	// EntitySchedule identifies one calendar date of the shift schedule.
	EntitySchedule EntityType = "schedule"
)

// Role distinguishes ordinary volunteers from administrators.
type Role string

// Recognised user roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// TaskStatus enumerates the task workflow states. All six directed
// transitions between the three states are permitted.
type TaskStatus string

// Canonical task workflow states.
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority enumerates task urgency levels.
type TaskPriority string

// Canonical task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskType separates tasks that feed the points economy from private ones.
type TaskType string

// Canonical task types.
const (
	// TaskTypeHostel tasks award points on completion and appear on team dashboards.
	TaskTypeHostel TaskType = "hostel"
	// TaskTypePersonal tasks are private to their creator and never award points.
	TaskTypePersonal TaskType = "personal"
)

// EventType enumerates event categories.
type EventType string

// Canonical event types.
const (
	EventTypeActivity   EventType = "activity"
	EventTypeInvitation EventType = "invitation"
)

// EventStatus enumerates event lifecycle states.
type EventStatus string

// Canonical event statuses. Cancelling keeps attendees, unlike delete.
const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User represents a staff/volunteer record. Points is the monotonic ledger
// balance mutated only by the task workflow engine.
type User struct {
	Base
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Country            string     `json:"country"`
	Age                int        `json:"age"`
	Phone              string     `json:"phone"`
	ArrivalDate        *time.Time `json:"arrival_date"`
	DepartureDate      *time.Time `json:"departure_date"`
	Gender             string     `json:"gender"`
	RelationshipStatus string     `json:"relationship_status"`
	Role               Role       `json:"role"`
	Points             int        `json:"points"`
}

// ChecklistItem is one ordered entry of a task checklist.
type ChecklistItem struct {
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

// Comment is one ordered entry of a task comment thread.
type Comment struct {
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskPhoto holds the proof-of-completion image attached to a task. A fresh
// upload always carries Approved=false.
type TaskPhoto struct {
	URL        string     `json:"url"`
	UploadedBy string     `json:"uploaded_by"`
	UploadedAt time.Time  `json:"uploaded_at"`
	Approved   bool       `json:"approved"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// Task represents a unit of work tracked by the workflow engine.
type Task struct {
	Base
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Points       int             `json:"points"`
	Status       TaskStatus      `json:"status"`
	Priority     TaskPriority    `json:"priority"`
	Type         TaskType        `json:"type"`
	CreatedBy    string          `json:"created_by"`
	AssignedTo   []string        `json:"assigned_to"`
	Tags         []string        `json:"tags"`
	Checklist    []ChecklistItem `json:"checklist"`
	Comments     []Comment       `json:"comments"`
	RequirePhoto bool            `json:"require_photo"`
	Photo        *TaskPhoto      `json:"photo,omitempty"`
}

// Event represents a scheduled activity or invitation.
type Event struct {
	Base
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Location    string      `json:"location"`
	Type        EventType   `json:"type"`
	Status      EventStatus `json:"status"`
	Capacity    int         `json:"capacity"`
	Attendees   []string    `json:"attendees"`
	Organizer   string      `json:"organizer"`
}

// Message represents one chat message. ReadBy always contains the author.
type Message struct {
	Base
	UserID      string              `json:"user_id"`
	Content     string              `json:"content"`
	Attachments []string            `json:"attachments,omitempty"`
	Reactions   map[string][]string `json:"reactions,omitempty"`
	ReadBy      []string            `json:"read_by"`
}

// SlotMap maps a shift-slot identifier to the ordered list of volunteer user
// ids assigned to that slot.
type SlotMap map[string][]string

// Schedule maps an ISO calendar date (2006-01-02) to its slot assignments.
// The whole date document is the unit of persistence; concurrent edits to the
// same date resolve last-write-wins.
type Schedule map[string]SlotMap

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for date, slots := range s {
		cp := make(SlotMap, len(slots))
		for slot, ids := range slots {
			cp[slot] = append([]string(nil), ids...)
		}
		out[date] = cp
	}
	return out
}
