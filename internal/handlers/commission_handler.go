package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_manager/internal/models"
	"shop_manager/internal/services"
)

type CommissionHandler struct {
	commissionService services.CommissionService
}

func NewCommissionHandler(commissionService services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

func (h *CommissionHandler) CreateRule(c *gin.Context) {
	var rule models.CommissionRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.commissionService.CreateRule(&rule); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (h *CommissionHandler) UpdateRule(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule id"})
		return
	}

	var rule models.CommissionRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	rule.ID = id

	if err := h.commissionService.UpdateRule(&rule); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *CommissionHandler) GetRule(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule id"})
		return
	}

	rule, err := h.commissionService.GetRuleByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *CommissionHandler) GetRules(c *gin.Context) {
	shopID, err := parseID(c.Query("shop_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	rules, err := h.commissionService.GetRulesByShop(shopID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetCommissions lists commissions by salesman or by sale.
func (h *CommissionHandler) GetCommissions(c *gin.Context) {
	if salesman := c.Query("salesman_id"); salesman != "" {
		salesmanID, err := parseID(salesman)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salesman_id"})
			return
		}
		commissions, err := h.commissionService.GetCommissionsBySalesman(salesmanID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"commissions": commissions})
		return
	}

	saleID, err := parseID(c.Query("sale_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "salesman_id or sale_id is required"})
		return
	}
	commissions, err := h.commissionService.GetCommissionsBySale(saleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commissions": commissions})
}

// UpdateStatus performs the pending→paid / pending→cancelled transition.
func (h *CommissionHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid commission id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.commissionService.UpdateCommissionStatus(id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}
