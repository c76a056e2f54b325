package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/queue"
)

func newNotificationService(db *memDB) *NotificationService {
	svc := NewNotificationService(memNotifications{db: db}, nil, auth.NewAuthorizationService(auth.NewDefaultPolicy()), nil, zerolog.Nop())
	svc.clock = testClock
	return svc
}

func TestDeliver_StoresNotificationWithoutMailer(t *testing.T) {
	db := newMemDB()
	svc := newNotificationService(db)

	err := svc.Deliver(context.Background(), NotificationEvent{
		UserID:  20,
		Kind:    models.NotifyJobApproved,
		Title:   "Job approved",
		Message: "Engineer is live",
		Payload: map[string]interface{}{"jobId": 10},
	})
	require.NoError(t, err)

	require.Len(t, db.notifications, 1)
	for _, n := range db.notifications {
		assert.Equal(t, int64(20), n.UserID)
		assert.False(t, n.IsRead)
		assert.JSONEq(t, `{"jobId":10}`, string(n.Payload))
	}
}

type recordingPublisher struct {
	userIDs []int64
	err     error
}

func (p *recordingPublisher) Publish(userID int64, eventType string, data interface{}) error {
	p.userIDs = append(p.userIDs, userID)
	return p.err
}

func TestDeliver_PushesStoredNotification(t *testing.T) {
	db := newMemDB()
	pub := &recordingPublisher{}
	svc := newNotificationService(db).WithPublisher(pub)

	require.NoError(t, svc.Deliver(context.Background(), NotificationEvent{UserID: 20, Kind: models.NotifyJobApproved, Title: "t", Message: "m"}))
	assert.Equal(t, []int64{20}, pub.userIDs)
}

func TestDeliver_PushFailureDoesNotFailDelivery(t *testing.T) {
	db := newMemDB()
	pub := &recordingPublisher{err: errors.New("buffer full")}
	svc := newNotificationService(db).WithPublisher(pub)

	require.NoError(t, svc.Deliver(context.Background(), NotificationEvent{UserID: 20, Kind: models.NotifyJobApproved, Title: "t", Message: "m"}))
	assert.Len(t, db.notifications, 1)
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	db := newMemDB()
	svc := newNotificationService(db)
	student := auth.Actor{UserID: 20, Role: models.RoleStudent, StudentID: 7}
	db.notifications[1] = &models.Notification{ID: 1, UserID: 20, Kind: models.NotifyApplicationStatus}

	first, err := svc.MarkRead(context.Background(), student, 1)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	svc.clock = func() time.Time { return testNow.Add(time.Hour) }
	second, err := svc.MarkRead(context.Background(), student, 1)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, *first.ReadAt, *second.ReadAt)
}

func TestMarkRead_OtherUsersNotification(t *testing.T) {
	db := newMemDB()
	svc := newNotificationService(db)
	db.notifications[1] = &models.Notification{ID: 1, UserID: 99}

	_, err := svc.MarkRead(context.Background(), auth.Actor{UserID: 20, Role: models.RoleStudent, StudentID: 7}, 1)
	assert.True(t, errors.Is(err, apperrors.ErrNotificationNotFound))
	assert.False(t, db.notifications[1].IsRead)
}

func TestHandleJob_DropsMalformedPayload(t *testing.T) {
	db := newMemDB()
	svc := newNotificationService(db)

	err := svc.HandleJob(context.Background(), &queue.Job{ID: "j1", Type: NotificationJobType, Payload: json.RawMessage(`"not an event"`)})
	assert.NoError(t, err)
	assert.Empty(t, db.notifications)

	payload, _ := json.Marshal(NotificationEvent{UserID: 5, Kind: models.NotifyProfileVerified, Title: "Verified"})
	require.NoError(t, svc.HandleJob(context.Background(), &queue.Job{ID: "j2", Type: NotificationJobType, Payload: payload}))
	assert.Len(t, db.notifications, 1)
}

type failingQueue struct {
	queue.Queue
}

func (failingQueue) Enqueue(context.Context, string, any) (string, error) {
	return "", errors.New("redis: connection refused")
}

func TestQueueDispatcher_FallsBackInline(t *testing.T) {
	fallback := &recordingDispatcher{}
	d := NewQueueDispatcher(failingQueue{}, fallback, zerolog.Nop())

	d.Dispatch(context.Background(),
		NotificationEvent{UserID: 1, Kind: models.NotifyCompanyStatus},
		NotificationEvent{UserID: 2, Kind: models.NotifyJobApproved},
	)
	assert.Equal(t, []models.NotificationKind{models.NotifyCompanyStatus, models.NotifyJobApproved}, fallback.kinds())
}
