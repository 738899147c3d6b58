package domain

import "time"

// Patch types carry partial updates: nil fields leave the stored value
// unchanged. Each Apply merges into an entity in place; the JSON encoding
// (omitted nil fields) doubles as the server-side merge patch.

// UserPatch is a partial update of a User record.
type UserPatch struct {
	Name               *string    `json:"name,omitempty"`
	Email              *string    `json:"email,omitempty"`
	Country            *string    `json:"country,omitempty"`
	Age                *int       `json:"age,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	ArrivalDate        *time.Time `json:"arrival_date,omitempty"`
	DepartureDate      *time.Time `json:"departure_date,omitempty"`
	Gender             *string    `json:"gender,omitempty"`
	RelationshipStatus *string    `json:"relationship_status,omitempty"`
	Role               *Role      `json:"role,omitempty"`
	Points             *int       `json:"points,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.ArrivalDate != nil {
		u.ArrivalDate = p.ArrivalDate
	}
	if p.DepartureDate != nil {
		u.DepartureDate = p.DepartureDate
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.RelationshipStatus != nil {
		u.RelationshipStatus = *p.RelationshipStatus
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Points != nil {
		u.Points = *p.Points
	}
}

// TaskPatch is a partial update of a Task record. List-valued fields replace
// the stored list wholesale when present.
type TaskPatch struct {
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Points       *int             `json:"points,omitempty"`
	Status       *TaskStatus      `json:"status,omitempty"`
	Priority     *TaskPriority    `json:"priority,omitempty"`
	Type         *TaskType        `json:"type,omitempty"`
	AssignedTo   *[]string        `json:"assigned_to,omitempty"`
	Tags         *[]string        `json:"tags,omitempty"`
	Checklist    *[]ChecklistItem `json:"checklist,omitempty"`
	Comments     *[]Comment       `json:"comments,omitempty"`
	RequirePhoto *bool            `json:"require_photo,omitempty"`
	Photo        *TaskPhoto       `json:"photo,omitempty"`
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Points != nil {
		t.Points = *p.Points
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.AssignedTo != nil {
		t.AssignedTo = append([]string(nil), *p.AssignedTo...)
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), *p.Tags...)
	}
	if p.Checklist != nil {
		t.Checklist = append([]ChecklistItem(nil), *p.Checklist...)
	}
	if p.Comments != nil {
		t.Comments = append([]Comment(nil), *p.Comments...)
	}
	if p.RequirePhoto != nil {
		t.RequirePhoto = *p.RequirePhoto
	}
	if p.Photo != nil {
		photo := *p.Photo
		t.Photo = &photo
	}
}

// EventPatch is a partial update of an Event record.
type EventPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	StartsAt    *time.Time   `json:"starts_at,omitempty"`
	EndsAt      *time.Time   `json:"ends_at,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Type        *EventType   `json:"type,omitempty"`
	Status      *EventStatus `json:"status,omitempty"`
	Capacity    *int         `json:"capacity,omitempty"`
	Attendees   *[]string    `json:"attendees,omitempty"`
	Organizer   *string      `json:"organizer,omitempty"`
}

// Apply merges the patch into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartsAt != nil {
		e.StartsAt = *p.StartsAt
	}
	if p.EndsAt != nil {
		e.EndsAt = *p.EndsAt
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Attendees != nil {
		e.Attendees = append([]string(nil), *p.Attendees...)
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
}

// MessagePatch is a partial update of a Message record.
type MessagePatch struct {
	Content     *string              `json:"content,omitempty"`
	Attachments *[]string            `json:"attachments,omitempty"`
	Reactions   *map[string][]string `json:"reactions,omitempty"`
	ReadBy      *[]string            `json:"read_by,omitempty"`
}

// Apply merges the patch into m.
func (p MessagePatch) Apply(m *Message) {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Attachments != nil {
		m.Attachments = append([]string(nil), *p.Attachments...)
	}
	if p.Reactions != nil {
		reactions := make(map[string][]string, len(*p.Reactions))
		for emoji, ids := range *p.Reactions {
			reactions[emoji] = append([]string(nil), ids...)
		}
		m.Reactions = reactions
	}
	if p.ReadBy != nil {
		m.ReadBy = append([]string(nil), *p.ReadBy...)
	}
}
