package models

import "time"

// Interview is one round scheduled under an application
type Interview struct {
	ID            int64           `json:"id" db:"id"`
	ApplicationID int64           `json:"applicationId" db:"application_id"`
	Round         int             `json:"round" db:"round"`
	InterviewType InterviewType   `json:"interviewType" db:"interview_type"`
	Mode          InterviewMode   `json:"mode" db:"mode"`
	ScheduledDate time.Time       `json:"scheduledDate" db:"scheduled_date"`
	ScheduledTime string          `json:"scheduledTime" db:"scheduled_time" example:"14:30"`
	DurationMins  int             `json:"durationMinutes" db:"duration_minutes"`
	Location      *string         `json:"location,omitempty" db:"location"`
	MeetingLink   *string         `json:"meetingLink,omitempty" db:"meeting_link"`
	Status        InterviewStatus `json:"status" db:"status"`
	Result        InterviewResult `json:"result" db:"result"`
	Feedback      *string         `json:"feedback,omitempty" db:"feedback"`
	CreatedBy     int64           `json:"createdBy" db:"created_by"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}
