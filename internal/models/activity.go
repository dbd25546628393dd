package models

import "time"

// Activity is a user-defined weekly pursuit with an hour goal and daily minutes history
type Activity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	WeeklyGoalHours float64   `json:"weeklyGoalHours"`
	History         History   `json:"history"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// Clone returns a deep copy of the activity
func (a Activity) Clone() Activity {
	a.History = a.History.Clone()
	return a
}

// ActivityDraft carries the fields needed to create an activity
type ActivityDraft struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	WeeklyGoalHours float64 `json:"weeklyGoalHours"`
	History         History `json:"history"`
}

// ActivityPatch is a partial update. Nil fields are left untouched by the service.
type ActivityPatch struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	WeeklyGoalHours *float64 `json:"weeklyGoalHours,omitempty"`
	History         *History `json:"history,omitempty"`
}

// IsEmpty reports whether the patch sets no fields
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.WeeklyGoalHours == nil && p.History == nil
}

// Apply merges the set fields of the patch into a copy of a
func (p ActivityPatch) Apply(a Activity) Activity {
	out := a.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.WeeklyGoalHours != nil {
		out.WeeklyGoalHours = *p.WeeklyGoalHours
	}
	if p.History != nil {
		out.History = p.History.Clone()
	}
	return out
}
