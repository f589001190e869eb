package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type addStockRequest struct {
	Size      string           `json:"size"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type resetRequest struct {
	Size string `json:"size"`
}

type reportResponse struct {
	*domain.InventoryReport
	Rows []domain.InventoryReportRow `json:"rows"`
}

// parseFilter reads the shared report query parameters. An unknown education
// level is rejected rather than silently matching nothing.
func (h *InventoryHandler) parseFilter(c *gin.Context) (domain.ReportFilter, bool) {
	filter := domain.ReportFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		StartDate: strings.TrimSpace(c.Query("start_date")),
		EndDate:   strings.TrimSpace(c.Query("end_date")),
	}

	if raw := strings.TrimSpace(c.Query("education_level")); raw != "" {
		level, ok := domain.ParseEducationLevel(raw)
		if !ok {
			badRequest(c, "education_level", "unknown education level "+strconv.Quote(raw))
			return filter, false
		}
		filter.EducationLevel = level
	}
	return filter, true
}

func parseID(c *gin.Context, field string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, field, "must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *InventoryHandler) GetReport(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	rows := make([]domain.InventoryReportRow, 0)
	for _, g := range report.Groups {
		rows = append(rows, g.Variants...)
	}

	c.JSON(http.StatusOK, reportResponse{InventoryReport: report, Rows: rows})
}

func (h *InventoryHandler) ListRows(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	rows, err := h.service.ListRows(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InventoryHandler) ListSizes(c *gin.Context) {
	var level domain.EducationLevel
	if raw := strings.TrimSpace(c.Query("education_level")); raw != "" {
		parsed, ok := domain.ParseEducationLevel(raw)
		if !ok {
			badRequest(c, "education_level", "unknown education level "+strconv.Quote(raw))
			return
		}
		level = parsed
	}

	sizes, err := h.service.ListSizes(c.Request.Context(), c.Query("name"), level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sizes)
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	var req addStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", "invalid request body")
		return
	}

	state, err := h.service.AddStock(c.Request.Context(), domain.AddStockInput{
		ItemID:    itemID,
		Size:      req.Size,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *InventoryHandler) ResetBeginningInventory(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	// the body is optional; no body resets every variant
	var req resetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "body", "invalid request body")
			return
		}
	}

	states, err := h.service.ResetBeginningInventory(c.Request.Context(), domain.ResetInput{
		ItemID: itemID,
		Size:   req.Size,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (h *InventoryHandler) PeriodHistory(c *gin.Context) {
	variantID, ok := parseID(c, "variant_id")
	if !ok {
		return
	}

	snapshots, err := h.service.PeriodHistory(c.Request.Context(), variantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func (h *InventoryHandler) EducationLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.EducationLevels())
}
