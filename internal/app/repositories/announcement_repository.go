package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

var announcementColumns = []string{
	"an.id", "an.title", "an.body", "an.priority", "an.target_roles", "an.target_departments",
	"an.target_batches", "an.publish_at", "an.expires_at", "an.created_by", "an.created_at", "an.updated_at",
}

// announcementOrder puts urgent notices first, then the newest
const announcementOrder = "CASE an.priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END"

// AnnouncementRepository handles announcements
type AnnouncementRepository struct {
	base
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(pool db.Querier) *AnnouncementRepository {
	return &AnnouncementRepository{base: newBase(pool)}
}

func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID, &a.Title, &a.Body, &a.Priority, &a.TargetRoles, &a.TargetDepartments,
		&a.TargetBatches, &a.PublishAt, &a.ExpiresAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Insert("announcements").
		Columns("title", "body", "priority", "target_roles", "target_departments", "target_batches",
			"publish_at", "expires_at", "created_by").
		Values(a.Title, a.Body, a.Priority, strs(a.TargetRoles), int64s(a.TargetDepartments), ints(a.TargetBatches),
			a.PublishAt, a.ExpiresAt, a.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err, nil, nil)
}

// Update replaces the content and audience of an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	n, err := r.exec(ctx, r.sb.Update("announcements").
		Set("title", a.Title).
		Set("body", a.Body).
		Set("priority", a.Priority).
		Set("target_roles", strs(a.TargetRoles)).
		Set("target_departments", int64s(a.TargetDepartments)).
		Set("target_batches", ints(a.TargetBatches)).
		Set("publish_at", a.PublishAt).
		Set("expires_at", a.ExpiresAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": a.ID}), "update announcement")
	if err != nil {
		return translate(err, nil, nil)
	}
	if n == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, r.sb.Delete("announcements").Where(squirrel.Eq{"id": id}), "delete announcement")
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// GetByID retrieves an announcement
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sql, args, err := r.sb.Select(announcementColumns...).From("announcements an").Where(squirrel.Eq{"an.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	a, err := scanAnnouncement(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrAnnouncementNotFound, nil)
	}
	return a, nil
}

// List returns announcements matching where and the scope, and their count.
// An empty where adds no condition.
func (r *AnnouncementRepository) List(ctx context.Context, scope auth.Scope, where squirrel.And, offset uint64, limit int) ([]*models.Announcement, int64, error) {
	total, err := r.count(ctx, scope.Apply(r.sb.Select("COUNT(*)").From("announcements an").Where(conditions(where))), "announcements")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.sb.Select(announcementColumns...).From("announcements an").Where(conditions(where))).
		OrderBy(announcementOrder, "an.publish_at DESC", "an.id DESC")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning announcement row: %w", err)
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
