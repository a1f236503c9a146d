package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/xuri/excelize/v2"
)

// DashboardService assembles the moderation dashboard and data exports.
type DashboardService struct {
	repo      *repository.TestimonialRepository
	mediaRepo *repository.MediaRepository
	cache     *cache.Service
	cfg       *config.TestimonialsConfig
}

func NewDashboardService(
	repo *repository.TestimonialRepository,
	mediaRepo *repository.MediaRepository,
	cacheService *cache.Service,
	cfg *config.TestimonialsConfig,
) *DashboardService {
	return &DashboardService{repo: repo, mediaRepo: mediaRepo, cache: cacheService, cfg: cfg}
}

// Overview is the dashboard landing payload.
type Overview struct {
	StatusCounts map[string]int64       `json:"status_counts"`
	Today        int64                  `json:"today"`
	Last7Days    int64                  `json:"last_7_days"`
	Last30Days   int64                  `json:"last_30_days"`
	Recent       []model.Testimonial    `json:"recent"`
	Pending      []model.Testimonial    `json:"pending"`
	MediaStats   *repository.MediaStats `json:"media_stats,omitempty"`
}

// Overview returns dashboard headline numbers, cached briefly.
// Moderators only.
func (s *DashboardService) Overview(ctx context.Context, viewer Viewer) (*Overview, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	var overview Overview
	err := s.cache.GetOrCompute(ctx, cache.KeyDashboardOverview(), cache.ClassVolatile, &overview, func() error {
		byStatus, err := s.repo.CountByStatus()
		if err != nil {
			return err
		}
		overview.StatusCounts = make(map[string]int64, len(model.AllStatuses))
		for _, status := range model.AllStatuses {
			overview.StatusCounts[string(status)] = byStatus[status]
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if overview.Today, err = s.repo.CountCreatedSince(today); err != nil {
			return err
		}
		if overview.Last7Days, err = s.repo.CountCreatedSince(now.AddDate(0, 0, -7)); err != nil {
			return err
		}
		if overview.Last30Days, err = s.repo.CountCreatedSince(now.AddDate(0, 0, -30)); err != nil {
			return err
		}

		if overview.Recent, err = s.repo.Recent(5); err != nil {
			return err
		}
		if overview.Pending, err = s.repo.Pending(5); err != nil {
			return err
		}

		if s.cfg.MediaEnabled {
			if overview.MediaStats, err = s.mediaRepo.GetStats(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

// Charts is the dashboard chart payload: distributions for rendering.
type Charts struct {
	RatingCounts  map[string]int64         `json:"rating_counts"`
	SourceCounts  map[string]int64         `json:"source_counts"`
	TopCategories []repository.CategoryCount `json:"top_categories"`
	AverageRating float64                  `json:"average_rating"`
}

// Charts returns chart data, cached briefly. Moderators only.
func (s *DashboardService) Charts(ctx context.Context, viewer Viewer) (*Charts, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	var charts Charts
	err := s.cache.GetOrCompute(ctx, cache.KeyDashboardCharts(), cache.ClassVolatile, &charts, func() error {
		stats, err := s.repo.GetStats(s.cfg.MaxRating)
		if err != nil {
			return err
		}
		charts.RatingCounts = stats.RatingCounts
		charts.SourceCounts = stats.SourceCounts
		charts.AverageRating = stats.AverageRating

		charts.TopCategories, err = s.repo.TopCategories(5)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &charts, nil
}

var exportHeaders = []string{
	"ID", "Author", "Company", "Title", "Content", "Rating",
	"Category", "Source", "Status", "Verified", "Anonymous",
	"Response", "Created At", "Approved At",
}

// ExportExcel writes all testimonials matching the filter into an xlsx
// workbook. Moderators only; visibility restrictions do not apply.
func (s *DashboardService) ExportExcel(input ListInput, viewer Viewer) (*bytes.Buffer, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	filter := repository.TestimonialFilter{
		CategoryID:    input.CategoryID,
		AuthorID:      input.AuthorID,
		CreatedAfter:  input.CreatedAfter,
		CreatedBefore: input.CreatedBefore,
		OrderBy:       "created_at ASC",
	}
	if input.Status != "" {
		status := model.TestimonialStatus(input.Status)
		if !model.ValidStatus(status) {
			return nil, ErrInvalidStatus
		}
		filter.Status = status
	}

	list, _, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Testimonials"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, t := range list {
		row := i + 2
		category := ""
		if t.Category != nil {
			category = t.Category.Name
		}
		approvedAt := ""
		if t.ApprovedAt != nil {
			approvedAt = t.ApprovedAt.Format(time.RFC3339)
		}

		values := []interface{}{
			t.ID, t.DisplayName(), t.Company, t.Title, t.Content, t.Rating,
			category, string(t.Source), string(t.Status), t.IsVerified, t.IsAnonymous,
			t.Response, t.CreatedAt.Format(time.RFC3339), approvedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return buf, nil
}
