package repository

import (
	"strconv"
	"time"

	"github.com/testimonialhq/testimonials-backend/internal/app/model"

	"gorm.io/gorm"
)

type TestimonialRepository struct {
	db *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

// TestimonialFilter narrows List queries. Zero values mean "no filter".
type TestimonialFilter struct {
	// Status is an explicit single-status filter, applied on top of the
	// visibility restriction so callers cannot widen what they may see.
	Status        model.TestimonialStatus
	Statuses      []model.TestimonialStatus
	CategoryID    *uint
	CategorySlug  string
	AuthorID      *uint
	MinRating     *int
	MaxRating     *int
	Source        model.TestimonialSource
	Author        string // matches author name or email
	IsAnonymous   *bool
	IsVerified    *bool
	HasResponse   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string

	// VisibleToUserID widens the status filter so a user also sees their
	// own unpublished testimonials. Ignored when nil.
	VisibleToUserID *uint

	Offset  int
	Limit   int
	OrderBy string // validated by the service before it gets here
}

func (r *TestimonialRepository) Create(t *model.Testimonial) error {
	return r.db.Create(t).Error
}

// BulkCreate inserts testimonials in batches, used by the xlsx importer.
func (r *TestimonialRepository) BulkCreate(testimonials []model.Testimonial, batchSize int) error {
	return r.db.CreateInBatches(testimonials, batchSize).Error
}

func (r *TestimonialRepository) GetByID(id uint) (*model.Testimonial, error) {
	var t model.Testimonial
	err := r.db.Preload("Category").Preload("Author").Preload("Media").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestimonialRepository) GetBySlug(slug string) (*model.Testimonial, error) {
	var t model.Testimonial
	err := r.db.Preload("Category").Preload("Author").Preload("Media").
		Where("slug = ?", slug).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByIDs loads testimonials in bulk, without preloads.
func (r *TestimonialRepository) GetByIDs(ids []uint) ([]model.Testimonial, error) {
	var list []model.Testimonial
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *TestimonialRepository) Update(t *model.Testimonial) error {
	return r.db.Save(t).Error
}

// Delete removes a testimonial and its media rows.
func (r *TestimonialRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("testimonial_id = ?", id).Delete(&model.TestimonialMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Testimonial{}, id).Error
	})
}

// SlugExists reports whether any testimonial already uses slug,
// including soft-deleted rows so slugs are never recycled.
func (r *TestimonialRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Testimonial{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *TestimonialRepository) applyFilter(query *gorm.DB, f TestimonialFilter) *gorm.DB {
	if f.VisibleToUserID != nil {
		query = query.Where("status IN ? OR author_id = ?", model.PublishedStatuses, *f.VisibleToUserID)
	} else if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		query = query.Where(
			"category_id IN (?)",
			r.db.Model(&model.TestimonialCategory{}).Select("id").Where("slug = ?", f.CategorySlug),
		)
	}
	if f.AuthorID != nil {
		query = query.Where("author_id = ?", *f.AuthorID)
	}
	if f.MinRating != nil {
		query = query.Where("rating >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		query = query.Where("rating <= ?", *f.MaxRating)
	}
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.Author != "" {
		pattern := "%" + f.Author + "%"
		query = query.Where(
			"LOWER(author_name) LIKE LOWER(?) OR LOWER(author_email) LIKE LOWER(?)",
			pattern, pattern,
		)
	}
	if f.IsAnonymous != nil {
		query = query.Where("is_anonymous = ?", *f.IsAnonymous)
	}
	if f.IsVerified != nil {
		query = query.Where("is_verified = ?", *f.IsVerified)
	}
	if f.HasResponse != nil {
		if *f.HasResponse {
			query = query.Where("response <> ''")
		} else {
			query = query.Where("response = '' OR response IS NULL")
		}
	}
	if f.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *f.CreatedBefore)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where(
			"LOWER(content) LIKE LOWER(?) OR LOWER(author_name) LIKE LOWER(?) OR LOWER(company) LIKE LOWER(?) OR LOWER(title) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern,
		)
	}

	return query
}

// List returns filtered testimonials plus the unpaginated total.
func (r *TestimonialRepository) List(f TestimonialFilter) ([]model.Testimonial, int64, error) {
	var list []model.Testimonial
	var total int64

	query := r.applyFilter(r.db.Model(&model.Testimonial{}), f)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := f.OrderBy
	if orderClause == "" {
		orderClause = "created_at DESC"
	}

	query = query.Preload("Category").Preload("Media").Order(orderClause)
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}
	// Limit <= 0 means no pagination; gorm renders Limit(0) as LIMIT 0.
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Featured returns featured testimonials ordered for display. A limit
// of zero or less returns all of them.
func (r *TestimonialRepository) Featured(limit int) ([]model.Testimonial, error) {
	var list []model.Testimonial
	query := r.db.Preload("Category").Preload("Media").
		Where("status = ?", model.StatusFeatured).
		Order("display_order ASC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}

// CountByStatus returns the number of testimonials per status.
func (r *TestimonialRepository) CountByStatus() (map[model.TestimonialStatus]int64, error) {
	type row struct {
		Status model.TestimonialStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.Testimonial{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.TestimonialStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// TestimonialStats aggregates the whole testimonial table.
type TestimonialStats struct {
	Total             int64            `json:"total"`
	AverageRating     float64          `json:"average_rating"`
	StatusCounts      map[string]int64 `json:"status_counts"`
	SourceCounts      map[string]int64 `json:"source_counts"`
	RatingCounts      map[string]int64 `json:"rating_counts"`
	VerifiedCount     int64            `json:"verified_count"`
	AnonymousCount    int64            `json:"anonymous_count"`
	WithResponseCount int64            `json:"with_response_count"`
}

// GetStats computes the aggregate statistics in a handful of grouped
// queries. Every known status, source and rating bucket is present in
// the result, zero-valued when empty.
func (r *TestimonialRepository) GetStats(maxRating int) (*TestimonialStats, error) {
	stats := &TestimonialStats{
		StatusCounts: make(map[string]int64),
		SourceCounts: make(map[string]int64),
		RatingCounts: make(map[string]int64),
	}

	if err := r.db.Model(&model.Testimonial{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		if err := r.db.Model(&model.Testimonial{}).
			Select("COALESCE(AVG(rating), 0)").
			Scan(&stats.AverageRating).Error; err != nil {
			return nil, err
		}
	}

	for _, status := range model.AllStatuses {
		stats.StatusCounts[string(status)] = 0
	}
	statusCounts, err := r.CountByStatus()
	if err != nil {
		return nil, err
	}
	for status, count := range statusCounts {
		stats.StatusCounts[string(status)] = count
	}

	type row struct {
		Key   string
		Count int64
	}

	for _, source := range model.AllSources {
		stats.SourceCounts[string(source)] = 0
	}
	var sourceRows []row
	if err := r.db.Model(&model.Testimonial{}).
		Select("source as key, COUNT(*) as count").
		Group("source").
		Scan(&sourceRows).Error; err != nil {
		return nil, err
	}
	for _, rw := range sourceRows {
		stats.SourceCounts[rw.Key] = rw.Count
	}

	for rating := 1; rating <= maxRating; rating++ {
		stats.RatingCounts[strconv.Itoa(rating)] = 0
	}
	var ratingRows []row
	if err := r.db.Model(&model.Testimonial{}).
		Select("CAST(rating AS TEXT) as key, COUNT(*) as count").
		Group("rating").
		Scan(&ratingRows).Error; err != nil {
		return nil, err
	}
	for _, rw := range ratingRows {
		stats.RatingCounts[rw.Key] = rw.Count
	}

	if err := r.db.Model(&model.Testimonial{}).
		Where("is_verified = ?", true).Count(&stats.VerifiedCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Testimonial{}).
		Where("is_anonymous = ?", true).Count(&stats.AnonymousCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Testimonial{}).
		Where("response <> ''").Count(&stats.WithResponseCount).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// CountCreatedSince counts testimonials created at or after t.
func (r *TestimonialRepository) CountCreatedSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Testimonial{}).
		Where("created_at >= ?", t).Count(&count).Error
	return count, err
}

// Recent returns the newest testimonials regardless of status.
func (r *TestimonialRepository) Recent(limit int) ([]model.Testimonial, error) {
	var list []model.Testimonial
	err := r.db.Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Pending returns the oldest-first moderation queue.
func (r *TestimonialRepository) Pending(limit int) ([]model.Testimonial, error) {
	var list []model.Testimonial
	err := r.db.Preload("Category").
		Where("status = ?", model.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// CategoryCount summarizes one category for dashboards.
type CategoryCount struct {
	CategoryID    uint    `json:"category_id"`
	Name          string  `json:"name"`
	Total         int64   `json:"total"`
	Approved      int64   `json:"approved"`
	AverageRating float64 `json:"average_rating"`
}

// TopCategories ranks categories by testimonial volume.
func (r *TestimonialRepository) TopCategories(limit int) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.Model(&model.TestimonialCategory{}).
		Select(`testimonial_categories.id as category_id,
			testimonial_categories.name as name,
			COUNT(testimonials.id) as total,
			COALESCE(SUM(CASE WHEN testimonials.status IN ? THEN 1 ELSE 0 END), 0) as approved,
			COALESCE(AVG(testimonials.rating), 0) as average_rating`,
			model.PublishedStatuses).
		Joins("LEFT JOIN testimonials ON testimonials.category_id = testimonial_categories.id AND testimonials.deleted_at IS NULL").
		Group("testimonial_categories.id, testimonial_categories.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DeleteRejectedBefore hard-deletes rejected testimonials last updated
// before cutoff, with their media. Used by the retention sweep.
func (r *TestimonialRepository) DeleteRejectedBefore(cutoff time.Time) (int64, error) {
	var ids []uint
	err := r.db.Model(&model.Testimonial{}).
		Where("status = ? AND updated_at < ?", model.StatusRejected, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("testimonial_id IN ?", ids).Delete(&model.TestimonialMedia{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN ?", ids).Delete(&model.Testimonial{}).Error
	})
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

