package models

import "time"

// Announcement is a notice broadcast to a target audience
type Announcement struct {
	ID                int64                `json:"id" db:"id"`
	Title             string               `json:"title" db:"title"`
	Body              string               `json:"body" db:"body"`
	Priority          AnnouncementPriority `json:"priority" db:"priority"`
	TargetRoles       []string             `json:"targetRoles" db:"target_roles"`
	TargetDepartments []int64              `json:"targetDepartments" db:"target_departments"`
	TargetBatches     []int                `json:"targetBatches" db:"target_batches"`
	PublishAt         time.Time            `json:"publishAt" db:"publish_at"`
	ExpiresAt         *time.Time           `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedBy         int64                `json:"createdBy" db:"created_by"`
	CreatedAt         time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time            `json:"updatedAt" db:"updated_at"`
}
