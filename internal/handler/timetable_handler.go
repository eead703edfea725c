package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/dto"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/export"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

const maxConflictLimit = 500

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ListExams(ctx context.Context, filter models.ExamFilter) ([]models.ExamListing, error)
	ListConflicts(ctx context.Context, filter models.ConflictFilter) ([]models.Conflict, error)
	ValidateDepartment(ctx context.Context, departmentID string) (*dto.ValidateDepartmentResponse, error)
}

type timetableExporter interface {
	Export(ctx context.Context, filter models.ExamFilter, format export.Format) (*service.ExportFile, error)
}

// TimetableHandler exposes the exam timetable endpoints.
type TimetableHandler struct {
	service  timetableService
	exporter timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService, exporter timetableExporter) *TimetableHandler {
	return &TimetableHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate the exam timetable
// @Description Resets and re-plans every pending exam of the scope. Department heads always plan their own department.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest false "Generation scope and period"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
			return
		}
	}

	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role == models.RoleDepartmentHead {
		req.DepartmentID = claims.DepartmentID
		req.FormationID = ""
	}

	res, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// ListExams godoc
// @Summary List scheduled exams
// @Description Exams ordered by start time, narrowed to the caller's department, formation or own exams.
// @Tags Timetable
// @Produce json
// @Param departmentId query string false "Department filter (admin, vice dean)"
// @Param formationId query string false "Formation filter"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *TimetableHandler) ListExams(c *gin.Context) {
	var query dto.ExamListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	filter, err := scopedExamFilter(claimsFromContext(c), query.DepartmentID, query.FormationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	exams, err := h.service.ListExams(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, exams, map[string]interface{}{"total": len(exams)})
}

// ListConflicts godoc
// @Summary List planning conflicts
// @Tags Timetable
// @Produce json
// @Param resolved query bool false "Filter by resolution state"
// @Param limit query int false "Maximum records (default 100)"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *TimetableHandler) ListConflicts(c *gin.Context) {
	var filter models.ConflictFilter
	if raw := c.Query("resolved"); raw != "" {
		resolved, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resolved must be a boolean"))
			return
		}
		filter.Resolved = &resolved
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxConflictLimit {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 500"))
			return
		}
		filter.Limit = limit
	}

	conflicts, err := h.service.ListConflicts(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, conflicts, map[string]interface{}{"total": len(conflicts)})
}

// ValidateDepartment godoc
// @Summary Validate the department timetable
// @Description Locks in every placed exam of the caller's department. Unplaced exams stay pending.
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /department/validate [post]
func (h *TimetableHandler) ValidateDepartment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.DepartmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is not bound to a department"))
		return
	}

	res, err := h.service.ValidateDepartment(c.Request.Context(), claims.DepartmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Export godoc
// @Summary Export the timetable
// @Description Streams the caller's scoped timetable as csv, pdf, xlsx or ics.
// @Tags Timetable
// @Produce octet-stream
// @Param format query string false "csv (default), pdf, xlsx or ics"
// @Param departmentId query string false "Department filter (admin, vice dean)"
// @Param formationId query string false "Formation filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	filter, err := scopedExamFilter(claimsFromContext(c), query.DepartmentID, query.FormationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), filter, export.Format(query.Format))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
