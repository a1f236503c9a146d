package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
)

type DashboardController struct {
	dashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Overview returns the dashboard headline numbers
// GET /api/v1/moderation/dashboard
func (ctrl *DashboardController) Overview(c *gin.Context) {
	overview, err := ctrl.dashboardService.Overview(c.Request.Context(), viewerFromContext(c))
	if respondServiceError(c, err, "get dashboard overview") {
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Charts returns distribution data for dashboard charts
// GET /api/v1/moderation/dashboard/charts
func (ctrl *DashboardController) Charts(c *gin.Context) {
	charts, err := ctrl.dashboardService.Charts(c.Request.Context(), viewerFromContext(c))
	if respondServiceError(c, err, "get dashboard charts") {
		return
	}

	c.JSON(http.StatusOK, charts)
}

// Export downloads testimonials as an xlsx workbook
// GET /api/v1/moderation/export
func (ctrl *DashboardController) Export(c *gin.Context) {
	input := service.ListInput{
		Status:     c.Query("status"),
		CategoryID: queryUint(c, "category_id"),
		AuthorID:   queryUint(c, "author_id"),
	}
	if after := c.Query("created_after"); after != "" {
		if t, err := time.Parse(time.RFC3339, after); err == nil {
			input.CreatedAfter = &t
		}
	}
	if before := c.Query("created_before"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			input.CreatedBefore = &t
		}
	}

	buf, err := ctrl.dashboardService.ExportExcel(input, viewerFromContext(c))
	if respondServiceError(c, err, "export testimonials") {
		return
	}

	filename := fmt.Sprintf("testimonials-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
