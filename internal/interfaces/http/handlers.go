package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/service"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/workflow"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/decay"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	statusService   service.StatusService
	planningService service.PlanningService
	engine          workflow.Engine
	exporter        *report.ScheduleExporter
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	statusService service.StatusService,
	planningService service.PlanningService,
	engine workflow.Engine,
	exporter *report.ScheduleExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		statusService:   statusService,
		planningService: planningService,
		engine:          engine,
		exporter:        exporter,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// StatusChangeRequest asks to move an order or batch to a new status.
type StatusChangeRequest struct {
	Next      string `json:"next" binding:"required"`
	ChangedBy int64  `json:"changed_by" binding:"required"`
	Notes     string `json:"notes"`
}

// DecisionRequest records one approver's decision on a pending request.
type DecisionRequest struct {
	ActorID   int64  `json:"actor_id" binding:"required"`
	Decision  string `json:"decision" binding:"required"`
	Comments  string `json:"comments"`
	Signature string `json:"signature"`
}

// ScheduleExportRequest asks for an Excel schedule covering the given batches.
type ScheduleExportRequest struct {
	Date    string              `json:"date" binding:"required"`
	Batches []ScheduleBatchItem `json:"batches" binding:"required"`
}

// ScheduleBatchItem is one batch to place on the exported schedule.
type ScheduleBatchItem struct {
	BatchID     int64               `json:"batch_id"`
	OrderID     int64               `json:"order_id"`
	Destination string              `json:"destination"`
	Plan        service.PlanRequest `json:"plan"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// ChangeOrderStatus handles POST /api/orders/:id/status
func (h *Handlers) ChangeOrderStatus(c *gin.Context) {
	orderID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	next := status.OrderStatus(req.Next)
	if !next.IsValid() {
		h.badRequest(c, "unknown order status: "+req.Next)
		return
	}

	request, err := h.statusService.ChangeOrderStatus(c.Request.Context(), orderID, next, req.ChangedBy, req.Notes)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":           req.Next,
			"approval_request": request,
		},
	})
}

// ChangeBatchStatus handles POST /api/batches/:id/status
func (h *Handlers) ChangeBatchStatus(c *gin.Context) {
	batchID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	next := status.BatchStatus(req.Next)
	if !next.IsValid() {
		h.badRequest(c, "unknown batch status: "+req.Next)
		return
	}

	request, err := h.statusService.ChangeBatchStatus(c.Request.Context(), batchID, next, req.ChangedBy, req.Notes)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":           req.Next,
			"approval_request": request,
		},
	})
}

// OrderNextStatuses handles GET /api/orders/:id/next-statuses
func (h *Handlers) OrderNextStatuses(c *gin.Context) {
	h.nextStatuses(c, status.KindOrder)
}

// BatchNextStatuses handles GET /api/batches/:id/next-statuses
func (h *Handlers) BatchNextStatuses(c *gin.Context) {
	h.nextStatuses(c, status.KindBatch)
}

func (h *Handlers) nextStatuses(c *gin.Context, kind status.EntityKind) {
	entityID, ok := h.pathID(c)
	if !ok {
		return
	}

	options, err := h.statusService.NextStatusOptions(c.Request.Context(), kind, entityID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"next_statuses": options},
	})
}

// DecideApproval handles POST /api/approvals/:id/decisions
func (h *Handlers) DecideApproval(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid request id")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	decision := approval.Decision(req.Decision)
	if !decision.IsValid() {
		h.badRequest(c, "unknown decision: "+req.Decision)
		return
	}

	request, err := h.engine.ProcessApproval(c.Request.Context(), requestID, req.ActorID, decision, req.Comments, req.Signature)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    request,
	})
}

// PendingApprovals handles GET /api/approvals/pending
func (h *Handlers) PendingApprovals(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		h.badRequest(c, "user_id query parameter is required")
		return
	}

	requests, err := h.engine.PendingApprovalsFor(c.Request.Context(), userID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"requests": requests, "count": len(requests)},
	})
}

// ApprovalHistory handles GET /api/approvals/history
func (h *Handlers) ApprovalHistory(c *gin.Context) {
	kind := status.EntityKind(c.Query("kind"))
	if !kind.IsValid() {
		h.badRequest(c, "kind query parameter must be ORDER or BATCH")
		return
	}
	entityID, err := strconv.ParseInt(c.Query("entity_id"), 10, 64)
	if err != nil {
		h.badRequest(c, "entity_id query parameter is required")
		return
	}

	history, err := h.engine.ApprovalHistoryFor(c.Request.Context(), kind, entityID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"history": history},
	})
}

// PlanBatch handles POST /api/plans
func (h *Handlers) PlanBatch(c *gin.Context) {
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	plan, err := h.planningService.PlanBatch(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    plan,
	})
}

// ExportSchedule handles POST /api/reports/schedule
func (h *Handlers) ExportSchedule(c *gin.Context) {
	var req ScheduleExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	rows := make([]report.ScheduleRow, 0, len(req.Batches))
	for _, item := range req.Batches {
		plan, err := h.planningService.PlanBatch(c.Request.Context(), item.Plan)
		if err != nil {
			h.serviceError(c, err)
			return
		}
		rows = append(rows, report.ScheduleRow{
			BatchID:     item.BatchID,
			OrderID:     item.OrderID,
			Destination: item.Destination,
			Plan:        *plan,
		})
	}

	path, err := h.exporter.Export(day, rows)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"path": path, "batches": len(rows)},
	})
}

// pathID parses the numeric :id path parameter.
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// serviceError maps domain errors onto HTTP status codes.
func (h *Handlers) serviceError(c *gin.Context, err error) {
	var code int
	switch {
	case errors.Is(err, approval.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, approval.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, approval.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, status.ErrIllegalTransition):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, status.ErrUnknownStatus),
		errors.Is(err, status.ErrUnknownKind),
		errors.Is(err, decay.ErrInvalidParameter):
		code = http.StatusBadRequest
	default:
		h.logger.Error("Request failed", "error", err)
		code = http.StatusInternalServerError
	}

	c.JSON(code, Response{
		Success: false,
		Error:   err.Error(),
	})
}
