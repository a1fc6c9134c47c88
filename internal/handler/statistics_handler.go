package handler

import (
	"net/http"
	"strconv"

	"github.com/holuwadafe/maglo-finance/internal/service"
	"github.com/holuwadafe/maglo-finance/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/api/statistics")
	{
		statsGroup.GET("", h.GetStatistics)
		statsGroup.GET("/payments", h.GetPaymentsSummary)
	}
}

// @Summary      Get Dashboard Statistics
// @Description  Invoice count, total paid, pending payments and VAT collected over all of the caller's invoices
// @Tags         Statistics
// @Produce      json
// @Success      200 {object} response.Response{data=service.DashboardStatsResponse}
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      503 {object} response.Response "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetDashboardStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// @Summary      Get Payments Summary
// @Description  Paid, unpaid, overdue and upcoming invoices with VAT collected per due month
// @Tags         Statistics
// @Produce      json
// @Param        months query int false "Keep only the N most recent months of VAT (default all)"
// @Success      200 {object} response.Response{data=service.PaymentsSummaryResponse}
// @Failure      400 {object} response.Response "Invalid months"
// @Failure      401 {object} response.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /api/statistics/payments [get]
func (h *StatisticsHandler) GetPaymentsSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	months := 0
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "months must be a non-negative integer"))
			return
		}
		months = n
	}

	summary, err := h.statisticsService.GetPaymentsSummary(c.Request.Context(), userID, months)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
