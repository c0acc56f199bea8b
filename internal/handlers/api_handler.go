package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"garage_finance/internal/models"
	"garage_finance/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type APIHandler struct {
	cogsService        services.COGSService
	grossProfitService services.GrossProfitService
	reportService      services.ProfitReportService
	transactionService services.FinancialTransactionService
	defaultMethod      string
	logger             logrus.FieldLogger
	now                func() time.Time
}

func NewAPIHandler(
	cogsService services.COGSService,
	grossProfitService services.GrossProfitService,
	reportService services.ProfitReportService,
	transactionService services.FinancialTransactionService,
	defaultMethod string,
	logger logrus.FieldLogger,
) *APIHandler {
	return &APIHandler{
		cogsService:        cogsService,
		grossProfitService: grossProfitService,
		reportService:      reportService,
		transactionService: transactionService,
		defaultMethod:      defaultMethod,
		logger:             logger,
		now:                time.Now,
	}
}

// COGS endpoints
func (h *APIHandler) CalculateCOGS(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := h.cogsService.CalculateAndStore(c.Request.Context(), id, req.Method)
	if err != nil {
		respondError(c, h.logger, "CalculateCOGS", err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *APIHandler) PreviewCOGS(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	method, err := services.ParseCostingMethod(c.DefaultQuery("method", h.defaultMethod))
	if err != nil {
		respondError(c, h.logger, "PreviewCOGS", err)
		return
	}

	result, err := h.cogsService.Calculate(c.Request.Context(), id, method)
	if err != nil {
		respondError(c, h.logger, "PreviewCOGS", err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *APIHandler) GetCOGSBreakdown(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.cogsService.GetBreakdown(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetCOGSBreakdown", err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *APIHandler) GetCOGSHistory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	history, err := h.cogsService.GetCalculationHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetCOGSHistory", err)
		return
	}
	respond(c, http.StatusOK, history)
}

func (h *APIHandler) GetGrossProfit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.grossProfitService.CalculateGrossProfit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "GetGrossProfit", err)
		return
	}
	respond(c, http.StatusOK, presentGrossProfit(result))
}

// GetIncomeStatement defaults to the current month up to today. Both
// bounds are widened to whole days.
func (h *APIHandler) GetIncomeStatement(c *gin.Context) {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if v := c.Query("fromDate"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid fromDate, expected YYYY-MM-DD")
			return
		}
		from = d
	}
	if v := c.Query("toDate"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid toDate, expected YYYY-MM-DD")
			return
		}
		to = d
	}

	from = startOfDay(from)
	to = startOfDay(to).Add(24*time.Hour - time.Nanosecond)
	if from.After(to) {
		fail(c, http.StatusBadRequest, "fromDate must not be after toDate")
		return
	}

	statement, err := h.reportService.GetIncomeStatement(c.Request.Context(), from, to, c.Query("serviceOrderStatus"))
	if err != nil {
		respondError(c, h.logger, "GetIncomeStatement", err)
		return
	}
	respond(c, http.StatusOK, presentIncomeStatement(statement))
}

// percentPlaces is the display precision of margins.
const percentPlaces = 2

func presentGrossProfit(result *models.GrossProfitResult) *models.GrossProfitResult {
	out := *result
	out.GrossProfitMargin = out.GrossProfitMargin.Round(percentPlaces)
	return &out
}

func presentIncomeStatement(statement *models.IncomeStatement) *models.IncomeStatement {
	out := *statement
	out.Profit.GrossProfitMargin = out.Profit.GrossProfitMargin.Round(percentPlaces)
	out.Profit.NetProfitMargin = out.Profit.NetProfitMargin.Round(percentPlaces)
	return &out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Financial transaction endpoints
func (h *APIHandler) CreateTransaction(c *gin.Context) {
	var req struct {
		TransactionType string          `json:"transaction_type" binding:"required"`
		Category        string          `json:"category" binding:"required"`
		SubCategory     string          `json:"sub_category"`
		Amount          decimal.Decimal `json:"amount"`
		TransactionDate *time.Time      `json:"transaction_date"`
		Status          string          `json:"status"`
		Description     string          `json:"description"`
		RelatedEntity   *string         `json:"related_entity"`
		RelatedEntityID *uint           `json:"related_entity_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	tx := &models.FinancialTransaction{
		TransactionType: req.TransactionType,
		Category:        req.Category,
		SubCategory:     req.SubCategory,
		Amount:          req.Amount,
		Status:          req.Status,
		Description:     req.Description,
		RelatedEntity:   req.RelatedEntity,
		RelatedEntityID: req.RelatedEntityID,
	}
	if req.TransactionDate != nil {
		tx.TransactionDate = *req.TransactionDate
	}

	if err := h.transactionService.Record(c.Request.Context(), tx); err != nil {
		respondError(c, h.logger, "CreateTransaction", err)
		return
	}
	respond(c, http.StatusCreated, tx)
}
