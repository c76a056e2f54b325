package dto

// NotificationFilterRequest filters the acting user's inbox
type NotificationFilterRequest struct {
	PageRequest
	UnreadOnly bool `form:"unread"`
}

// UnreadCountResponse reports the number of unread notifications
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were marked
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
