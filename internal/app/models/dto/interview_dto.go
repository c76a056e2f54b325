package dto

import "time"

// ScheduleInterviewRequest schedules a round for an application
type ScheduleInterviewRequest struct {
	ApplicationID int64     `json:"applicationId" binding:"required,gt=0"`
	Round         int       `json:"round" binding:"omitempty,min=1"`
	InterviewType string    `json:"interviewType" binding:"required,oneof=technical hr group_discussion aptitude other"`
	Mode          string    `json:"mode" binding:"required,oneof=online offline"`
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	ScheduledTime string    `json:"scheduledTime" binding:"required,datetime=15:04" example:"14:30"`
	DurationMins  int       `json:"durationMinutes" binding:"omitempty,min=5,max=600"`
	Location      *string   `json:"location,omitempty" binding:"omitempty,max=300"`
	MeetingLink   *string   `json:"meetingLink,omitempty" binding:"omitempty,url"`
}

// UpdateInterviewRequest changes an open interview. Moving the date or time
// marks it rescheduled.
type UpdateInterviewRequest struct {
	InterviewType *string    `json:"interviewType,omitempty" binding:"omitempty,oneof=technical hr group_discussion aptitude other"`
	Mode          *string    `json:"mode,omitempty" binding:"omitempty,oneof=online offline"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	ScheduledTime *string    `json:"scheduledTime,omitempty" binding:"omitempty,datetime=15:04"`
	DurationMins  *int       `json:"durationMinutes,omitempty" binding:"omitempty,min=5,max=600"`
	Location      *string    `json:"location,omitempty" binding:"omitempty,max=300"`
	MeetingLink   *string    `json:"meetingLink,omitempty" binding:"omitempty,url"`
}

// InterviewResultRequest records the outcome of an interview
type InterviewResultRequest struct {
	Result   string  `json:"result" binding:"required,oneof=passed failed selected rejected on_hold"`
	Feedback *string `json:"feedback,omitempty" binding:"omitempty,max=4000"`
}

// InterviewFilterRequest filters the interview list
type InterviewFilterRequest struct {
	PageRequest
	ApplicationID *int64     `form:"applicationId" binding:"omitempty,gt=0"`
	JobID         *int64     `form:"jobId" binding:"omitempty,gt=0"`
	Status        string     `form:"status" binding:"omitempty,oneof=scheduled rescheduled completed cancelled"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
}

// InterviewResultResponse returns both records changed by a result
type InterviewResultResponse struct {
	Interview   interface{} `json:"interview"`
	Application interface{} `json:"application"`
}
