package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/shift-scheduler-api/pkg/errors"
	"github.com/noah-isme/shift-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	Exists(ctx context.Context, query dto.ScheduleExistsQuery) (*dto.ScheduleExistsResponse, error)
	Proposal(ctx context.Context, id string) (*dto.GenerateScheduleResponse, error)
}

type scheduleCommitter interface {
	Commit(ctx context.Context, req dto.CommitScheduleRequest) (*dto.CommitScheduleResponse, error)
	CompletePast(ctx context.Context, departmentID string, req dto.CompletePastRequest) (*dto.CompletePastResponse, error)
}

type rosterExporter interface {
	Export(ctx context.Context, query dto.RosterExportQuery) (*dto.RosterExportResult, error)
}

// ScheduleGeneratorHandler exposes the scheduling endpoints.
type ScheduleGeneratorHandler struct {
	generator scheduleGenerator
	committer scheduleCommitter
	roster    rosterExporter
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(generator scheduleGenerator, committer scheduleCommitter, roster rosterExporter) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{generator: generator, committer: committer, roster: roster}
}

// Generate godoc
// @Summary Generate a schedule preview
// @Description Runs one generation pass for a department and inclusive date range. Nothing is persisted; the preview is stored under proposalId until committed or expired.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if err := authorizeDepartment(c, req.DepartmentID); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	response.JSON(c, status, result, requesterMeta(c))
}

// Exists godoc
// @Summary Check for a committed schedule
// @Tags Scheduler
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedules/exists [get]
func (h *ScheduleGeneratorHandler) Exists(c *gin.Context) {
	var query dto.ScheduleExistsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if err := authorizeDepartment(c, query.DepartmentID); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.generator.Exists(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Proposal godoc
// @Summary Get a stored schedule preview
// @Tags Scheduler
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/proposals/{id} [get]
func (h *ScheduleGeneratorHandler) Proposal(c *gin.Context) {
	result, err := h.generator.Proposal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := authorizeDepartment(c, result.DepartmentID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Commit godoc
// @Summary Commit a schedule proposal
// @Description Persists the proposal (or the supplied hand-edited assignments) in one transaction and notifies each affected employee once.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.CommitScheduleRequest true "Commit payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /schedules/commit [post]
func (h *ScheduleGeneratorHandler) Commit(c *gin.Context) {
	var req dto.CommitScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
		return
	}
	if homeDepartment(c) != "" && req.ProposalID != "" {
		proposal, err := h.generator.Proposal(c.Request.Context(), req.ProposalID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := authorizeDepartment(c, proposal.DepartmentID); err != nil {
			response.Error(c, err)
			return
		}
	}
	result, err := h.committer.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CompletePast godoc
// @Summary Mark past assignments completed
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param departmentId query string false "Department ID, all departments when empty (a department-bound manager defaults to their own)"
// @Param payload body dto.CompletePastRequest false "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/complete [post]
func (h *ScheduleGeneratorHandler) CompletePast(c *gin.Context) {
	var req dto.CompletePastRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completion payload"))
			return
		}
	}
	departmentID := c.Query("departmentId")
	if departmentID == "" {
		departmentID = homeDepartment(c)
	}
	if err := authorizeDepartment(c, departmentID); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.committer.CompletePast(c.Request.Context(), departmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Roster godoc
// @Summary Export the committed roster
// @Tags Scheduler
// @Produce text/csv
// @Produce application/pdf
// @Param departmentId query string true "Department ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /schedules/roster [get]
func (h *ScheduleGeneratorHandler) Roster(c *gin.Context) {
	var query dto.RosterExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if err := authorizeDepartment(c, query.DepartmentID); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.roster.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

func requesterMeta(c *gin.Context) map[string]interface{} {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return map[string]interface{}{"requestedBy": claims.UserID}
}
