package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop_manager/internal/services"
)

type PerformanceHandler struct {
	performanceService services.PerformanceService
}

func NewPerformanceHandler(performanceService services.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceService: performanceService}
}

// GetMonthlySummary reports a salesman's settled sales against their target
// for a month (defaults to the current month).
func (h *PerformanceHandler) GetMonthlySummary(c *gin.Context) {
	salesmanID, err := parseID(c.Param("salesman_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salesman id"})
		return
	}

	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	summary, err := h.performanceService.MonthlySummary(salesmanID, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetShopSummaries reports every targeted salesman in a shop for a month
// (defaults to the current month).
func (h *PerformanceHandler) GetShopSummaries(c *gin.Context) {
	shopID, err := parseID(c.Query("shop_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	summaries, err := h.performanceService.ShopMonthlySummaries(shopID, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}
