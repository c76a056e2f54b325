package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/queue"
)

// NotificationJobType is the queue job type carrying a NotificationEvent.
const NotificationJobType = "notification"

// NotificationEvent is a message for one user produced by a use case
type NotificationEvent struct {
	UserID  int64                   `json:"userId"`
	Kind    models.NotificationKind `json:"kind"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Payload map[string]interface{}  `json:"payload,omitempty"`
}

// Dispatcher hands notification events to delivery. Use cases call it after
// their transaction committed; it never fails the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...NotificationEvent)
}

// Publisher pushes a stored notification to the user's open connections
type Publisher interface {
	Publish(userID int64, eventType string, data interface{}) error
}

// NotificationStreamEvent is the event type of pushed notifications
const NotificationStreamEvent = "notification"

// NotificationService manages the acting user's inbox and delivers events
type NotificationService struct {
	notificationRepo NotificationStore
	userRepo         UserStore
	authz            *auth.AuthorizationService
	mailer           email.EmailService
	publisher        Publisher
	clock            Clock
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService. mailer may be nil.
func NewNotificationService(
	notificationRepo NotificationStore,
	userRepo UserStore,
	authz *auth.AuthorizationService,
	mailer email.EmailService,
	logger zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		authz:            authz,
		mailer:           mailer,
		logger:           logger,
	}
}

// WithPublisher enables live push of delivered notifications.
func (s *NotificationService) WithPublisher(p Publisher) *NotificationService {
	s.publisher = p
	return s
}

// List returns a page of the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor auth.Actor, filter dto.NotificationFilterRequest) (*dto.PaginatedResponse, error) {
	scope, err := s.authz.Scope(actor, auth.ResourceNotifications)
	if err != nil {
		return nil, err
	}

	page, size := helpers.NormalizePage(filter.PageRequest)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	items, total, err := s.notificationRepo.List(ctx, scope, filter.UnreadOnly, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	resp := helpers.Paginate(items, total, page, size)
	return &resp, nil
}

// UnreadCount returns how many of the actor's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, actor auth.Actor) (int64, error) {
	if err := s.authz.Require(actor, auth.ResourceNotifications, auth.ActionRead); err != nil {
		return 0, err
	}
	return s.notificationRepo.CountUnread(ctx, actor.UserID)
}

// MarkRead marks one of the actor's notifications read. Marking an already
// read notification succeeds without changing it.
func (s *NotificationService) MarkRead(ctx context.Context, actor auth.Actor, id int64) (*models.Notification, error) {
	if err := s.authz.Require(actor, auth.ResourceNotifications, auth.ActionUpdate); err != nil {
		return nil, err
	}

	if _, err := s.notificationRepo.MarkRead(ctx, id, actor.UserID, s.clock.now()); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	// Not changed means already read or not the actor's; the lookup tells
	// the two apart.
	return s.notificationRepo.GetForUser(ctx, id, actor.UserID)
}

// MarkAllRead marks every unread notification of the actor read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error) {
	if err := s.authz.Require(actor, auth.ResourceNotifications, auth.ActionUpdate); err != nil {
		return 0, err
	}
	return s.notificationRepo.MarkAllRead(ctx, actor.UserID, s.clock.now())
}

// Deliver stores the event in the user's inbox and mails it when a mailer
// is configured. Mail failures are logged only.
func (s *NotificationService) Deliver(ctx context.Context, event NotificationEvent) error {
	var payload json.RawMessage
	if len(event.Payload) > 0 {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode notification payload: %w", err)
		}
		payload = raw
	}

	n := &models.Notification{
		UserID:  event.UserID,
		Kind:    event.Kind,
		Title:   event.Title,
		Message: event.Message,
		Payload: payload,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(n.UserID, NotificationStreamEvent, n); err != nil {
			s.logger.Warn().Err(err).Int64("userId", n.UserID).Msg("Failed to push notification")
		}
	}

	if s.mailer == nil {
		return nil
	}
	user, err := s.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userId", event.UserID).Msg("Could not load notification recipient")
		return nil
	}
	if err := s.mailer.SendNotification(user.Email, user.FullName(), event.Title, event.Message); err != nil {
		s.logger.Warn().Err(err).Int64("userId", event.UserID).Str("kind", string(event.Kind)).Msg("Failed to email notification")
	}
	return nil
}

// HandleJob is the queue handler for NotificationJobType.
func (s *NotificationService) HandleJob(ctx context.Context, job *queue.Job) error {
	var event NotificationEvent
	if err := json.Unmarshal(job.Payload, &event); err != nil {
		// A malformed payload never succeeds; drop it.
		s.logger.Error().Err(err).Str("jobId", job.ID).Msg("Discarding malformed notification job")
		return nil
	}
	return s.Deliver(ctx, event)
}

// InlineDispatcher delivers events synchronously in the request goroutine
type InlineDispatcher struct {
	notifications *NotificationService
	logger        zerolog.Logger
}

// NewInlineDispatcher creates a dispatcher that calls Deliver directly
func NewInlineDispatcher(notifications *NotificationService, logger zerolog.Logger) *InlineDispatcher {
	return &InlineDispatcher{notifications: notifications, logger: logger}
}

// Dispatch delivers each event, logging failures.
func (d *InlineDispatcher) Dispatch(ctx context.Context, events ...NotificationEvent) {
	for _, event := range events {
		if err := d.notifications.Deliver(ctx, event); err != nil {
			d.logger.Error().Err(err).Int64("userId", event.UserID).Str("kind", string(event.Kind)).Msg("Failed to deliver notification")
		}
	}
}

// QueueDispatcher enqueues events for the notification worker and falls back
// to inline delivery when the queue is unavailable
type QueueDispatcher struct {
	queue    queue.Queue
	fallback Dispatcher
	logger   zerolog.Logger
}

// NewQueueDispatcher creates a dispatcher backed by q
func NewQueueDispatcher(q queue.Queue, fallback Dispatcher, logger zerolog.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: q, fallback: fallback, logger: logger}
}

// Dispatch enqueues each event.
func (d *QueueDispatcher) Dispatch(ctx context.Context, events ...NotificationEvent) {
	for _, event := range events {
		jobID, err := d.queue.Enqueue(ctx, NotificationJobType, event)
		if err != nil {
			d.logger.Warn().Err(err).Int64("userId", event.UserID).Msg("Notification queue unavailable, delivering inline")
			if d.fallback != nil {
				d.fallback.Dispatch(ctx, event)
			}
			continue
		}
		d.logger.Debug().Str("jobId", jobID).Str("kind", string(event.Kind)).Msg("Notification enqueued")
	}
}

// NoopDispatcher drops every event
type NoopDispatcher struct{}

// Dispatch does nothing.
func (NoopDispatcher) Dispatch(context.Context, ...NotificationEvent) {}

var (
	_ Dispatcher = (*InlineDispatcher)(nil)
	_ Dispatcher = (*QueueDispatcher)(nil)
	_ Dispatcher = NoopDispatcher{}
)

// notFound reports whether err is any not-found error; used where a missing
// related record must surface as a validation problem.
func notFound(err error) bool {
	return apperrors.Is(err, apperrors.ErrResourceNotFound)
}
