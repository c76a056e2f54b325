package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func int64p(v int64) *int64 { return &v }

func float64p(v float64) *float64 { return &v }

// memDB is an in-memory record store. A transaction holds txMu for its whole
// duration, like the row locks the real stores take, and restores a snapshot
// when fn fails.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID        int64
	students      map[int64]*models.StudentProfile
	jobs          map[int64]*models.JobPosting
	applications  map[int64]*models.ApplicationDetails
	interviews    map[int64]*models.Interview
	notifications map[int64]*models.Notification

	failInterviewUpdate error
	commits             int
}

func newMemDB() *memDB {
	return &memDB{
		nextID:        100,
		students:      map[int64]*models.StudentProfile{},
		jobs:          map[int64]*models.JobPosting{},
		applications:  map[int64]*models.ApplicationDetails{},
		interviews:    map[int64]*models.Interview{},
		notifications: map[int64]*models.Notification{},
	}
}

type memSnapshot struct {
	applications map[int64]models.ApplicationDetails
	interviews   map[int64]models.Interview
	students     map[int64]models.StudentProfile
}

func (d *memDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	snap := d.snapshot()
	if err := fn(ctx); err != nil {
		d.restore(snap)
		return err
	}
	d.commits++
	return nil
}

func (d *memDB) snapshot() memSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := memSnapshot{
		applications: map[int64]models.ApplicationDetails{},
		interviews:   map[int64]models.Interview{},
		students:     map[int64]models.StudentProfile{},
	}
	for k, v := range d.applications {
		s.applications[k] = *v
	}
	for k, v := range d.interviews {
		s.interviews[k] = *v
	}
	for k, v := range d.students {
		s.students[k] = *v
	}
	return s
}

func (d *memDB) restore(s memSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applications = map[int64]*models.ApplicationDetails{}
	for k, v := range s.applications {
		v := v
		d.applications[k] = &v
	}
	d.interviews = map[int64]*models.Interview{}
	for k, v := range s.interviews {
		v := v
		d.interviews[k] = &v
	}
	d.students = map[int64]*models.StudentProfile{}
	for k, v := range s.students {
		v := v
		d.students[k] = &v
	}
}

func (d *memDB) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *memDB) application(id int64) models.ApplicationDetails {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.applications[id]
}

func (d *memDB) interview(id int64) models.Interview {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.interviews[id]
}

func (d *memDB) countApplications(studentID, jobID int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, a := range d.applications {
		if a.StudentID == studentID && a.JobID == jobID {
			n++
		}
	}
	return n
}

type memStudents struct {
	StudentStore
	db *memDB
}

func (s memStudents) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sp, ok := s.db.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *sp
	return &cp, nil
}

func (s memStudents) GetForUpdate(ctx context.Context, id int64) (*models.StudentProfile, error) {
	return s.GetByID(ctx, id)
}

func (s memStudents) List(ctx context.Context, scope auth.Scope, filter dto.StudentFilterRequest, offset uint64, limit int) ([]*models.StudentProfile, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.StudentProfile
	for _, sp := range s.db.students {
		if scope.AllowsStudentRecord(sp.ID, sp.DepartmentID) {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (s memStudents) UpdatePlacementStatus(ctx context.Context, id int64, status models.PlacementStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.students[id].PlacementStatus = status
	return nil
}

type memJobs struct {
	JobStore
	db *memDB
}

func (s memJobs) GetByID(ctx context.Context, id int64) (*models.JobPosting, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	j, ok := s.db.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s memJobs) Update(ctx context.Context, j *models.JobPosting) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.jobs[j.ID]; !ok {
		return apperrors.ErrJobNotFound
	}
	cp := *j
	s.db.jobs[j.ID] = &cp
	return nil
}

func (s memJobs) List(ctx context.Context, scope auth.Scope, filter dto.JobFilterRequest, offset uint64, limit int) ([]*models.JobPosting, int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.JobPosting
	for id := int64(0); id <= s.db.nextID; id++ {
		if j, ok := s.db.jobs[id]; ok && scope.AllowsJob(j) {
			cp := *j
			out = append(out, &cp)
		}
	}
	total := int64(len(out))
	if limit > 0 {
		end := int(offset) + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, total, nil
}

type memApplications struct {
	ApplicationStore
	db *memDB
}

func (s memApplications) GetByID(ctx context.Context, id int64) (*models.ApplicationDetails, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (s memApplications) GetForUpdate(ctx context.Context, id int64) (*models.ApplicationDetails, error) {
	return s.GetByID(ctx, id)
}

func (s memApplications) ExistsActive(ctx context.Context, studentID, jobID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.applications {
		if a.StudentID == studentID && a.JobID == jobID && a.Status != models.ApplicationWithdrawn {
			return true, nil
		}
	}
	return false, nil
}

// Create enforces the partial unique index on active applications.
func (s memApplications) Create(ctx context.Context, a *models.Application) error {
	if exists, _ := s.ExistsActive(ctx, a.StudentID, a.JobID); exists {
		return apperrors.ErrDuplicateApplication
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a.ID = s.db.id()
	a.AppliedAt = testNow
	sp := s.db.students[a.StudentID]
	s.db.applications[a.ID] = &models.ApplicationDetails{
		Application:         *a,
		StudentUserID:       sp.UserID,
		StudentDepartmentID: sp.DepartmentID,
		JobTitle:            s.db.jobs[a.JobID].Title,
	}
	return nil
}

func (s memApplications) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, reviewedBy *int64, remarks *string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.applications[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	a.Status = status
	if reviewedBy != nil {
		a.ReviewedBy = reviewedBy
		a.ReviewedAt = &at
	}
	return nil
}

type memInterviews struct {
	InterviewStore
	db *memDB
}

func (s memInterviews) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i, ok := s.db.interviews[id]
	if !ok {
		return nil, apperrors.ErrInterviewNotFound
	}
	cp := *i
	return &cp, nil
}

func (s memInterviews) GetForUpdate(ctx context.Context, id int64) (*models.Interview, error) {
	return s.GetByID(ctx, id)
}

func (s memInterviews) NextRound(ctx context.Context, applicationID int64) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	round := 0
	for _, i := range s.db.interviews {
		if i.ApplicationID == applicationID && i.Round > round {
			round = i.Round
		}
	}
	return round + 1, nil
}

func (s memInterviews) Create(ctx context.Context, i *models.Interview) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i.ID = s.db.id()
	cp := *i
	s.db.interviews[i.ID] = &cp
	return nil
}

func (s memInterviews) Update(ctx context.Context, i *models.Interview) error {
	if s.db.failInterviewUpdate != nil {
		return s.db.failInterviewUpdate
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cp := *i
	s.db.interviews[i.ID] = &cp
	return nil
}

func (s memInterviews) CancelOpen(ctx context.Context, applicationID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, i := range s.db.interviews {
		if i.ApplicationID == applicationID && (i.Status == models.InterviewScheduled || i.Status == models.InterviewRescheduled) {
			i.Status = models.InterviewCancelled
			n++
		}
	}
	return n, nil
}

type memNotifications struct {
	NotificationStore
	db *memDB
}

func (s memNotifications) Create(ctx context.Context, n *models.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n.ID = s.db.id()
	cp := *n
	s.db.notifications[n.ID] = &cp
	return nil
}

func (s memNotifications) GetForUser(ctx context.Context, id, userID int64) (*models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.UserID != userID {
		return nil, apperrors.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (s memNotifications) MarkRead(ctx context.Context, id, userID int64, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.UserID != userID || n.IsRead {
		return false, nil
	}
	n.IsRead = true
	n.ReadAt = &at
	return true, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, events ...NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
}

func (d *recordingDispatcher) kinds() []models.NotificationKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.NotificationKind, len(d.events))
	for i, e := range d.events {
		out[i] = e.Kind
	}
	return out
}

// fixture wires the services under test to one memDB.
type fixture struct {
	db           *memDB
	notifier     *recordingDispatcher
	applications *ApplicationService
	interviews   *InterviewService
	jobs         *JobService
}

func newFixture() *fixture {
	db := newMemDB()
	notifier := &recordingDispatcher{}
	authz := auth.NewAuthorizationService(auth.NewDefaultPolicy())
	log := zerolog.Nop()

	apps := NewApplicationService(db, memApplications{db: db}, memStudents{db: db}, memJobs{db: db}, memInterviews{db: db}, authz, notifier, log)
	apps.clock = testClock
	interviews := NewInterviewService(db, memInterviews{db: db}, memApplications{db: db}, authz, notifier, log)
	interviews.clock = testClock
	jobs := NewJobService(memJobs{db: db}, nil, memStudents{db: db}, memApplications{db: db}, authz, notifier, log)
	jobs.clock = testClock

	return &fixture{db: db, notifier: notifier, applications: apps, interviews: interviews, jobs: jobs}
}

func (f *fixture) addStudent(id, userID, dept int64, cgpa float64) auth.Actor {
	f.db.students[id] = &models.StudentProfile{
		ID:              id,
		UserID:          userID,
		RollNumber:      fmt.Sprintf("R-%d", id),
		DepartmentID:    dept,
		Degree:          "BTech",
		BatchYear:       2025,
		CGPA:            cgpa,
		PlacementStatus: models.PlacementActive,
	}
	return auth.Actor{UserID: userID, Role: models.RoleStudent, DepartmentID: int64p(dept), StudentID: id, BatchYear: 2025}
}

func (f *fixture) addJob(id int64, status models.JobStatus, requiredCGPA *float64) {
	f.db.jobs[id] = &models.JobPosting{
		ID:           id,
		CompanyID:    1,
		CompanyName:  "Acme",
		Title:        "Engineer",
		Status:       status,
		RequiredCGPA: requiredCGPA,
		DepartmentID: int64p(3),
	}
}

func (f *fixture) addApplication(id, studentID, jobID int64, status models.ApplicationStatus) {
	sp := f.db.students[studentID]
	f.db.applications[id] = &models.ApplicationDetails{
		Application:         models.Application{ID: id, StudentID: studentID, JobID: jobID, Status: status},
		StudentUserID:       sp.UserID,
		StudentDepartmentID: sp.DepartmentID,
		JobTitle:            "Engineer",
		CompanyName:         "Acme",
	}
}

func (f *fixture) addInterview(id, applicationID int64, status models.InterviewStatus) {
	f.db.interviews[id] = &models.Interview{
		ID:            id,
		ApplicationID: applicationID,
		Round:         1,
		InterviewType: models.InterviewTechnical,
		Mode:          models.InterviewOnline,
		ScheduledDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		Status:        status,
		Result:        models.ResultPending,
	}
}

var (
	admin       = auth.Actor{UserID: 1, Role: models.RoleAdmin}
	coordinator = auth.Actor{UserID: 2, Role: models.RoleCoordinator, DepartmentID: int64p(3)}
)
