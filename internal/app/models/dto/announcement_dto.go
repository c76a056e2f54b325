package dto

import "time"

// AnnouncementRequest creates or replaces an announcement
type AnnouncementRequest struct {
	Title             string     `json:"title" binding:"required,max=200"`
	Body              string     `json:"body" binding:"required"`
	Priority          string     `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	TargetRoles       []string   `json:"targetRoles,omitempty" binding:"omitempty,dive,oneof=admin dept_officer coordinator student"`
	TargetDepartments []int64    `json:"targetDepartments,omitempty" binding:"omitempty,dive,gt=0"`
	TargetBatches     []int      `json:"targetBatches,omitempty" binding:"omitempty,dive,min=1990,max=2100"`
	PublishAt         *time.Time `json:"publishAt,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}
