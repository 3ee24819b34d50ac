package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shop_manager/internal/services"
)

type SaleHandler struct {
	saleService services.SaleService
}

func NewSaleHandler(saleService services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sale, err := h.saleService.CreateSale(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale id"})
		return
	}

	var req services.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sale, err := h.saleService.UpdateSale(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale id"})
		return
	}

	if err := h.saleService.DeleteSale(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale id"})
		return
	}

	sale, err := h.saleService.GetSale(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// GetSales lists sales for a shop, optionally narrowed to a date range or a
// salesman.
func (h *SaleHandler) GetSales(c *gin.Context) {
	if salesman := c.Query("salesman_id"); salesman != "" {
		salesmanID, err := parseID(salesman)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salesman_id"})
			return
		}
		sales, err := h.saleService.GetSalesBySalesman(salesmanID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sales": sales})
		return
	}

	shopID, err := parseID(c.Query("shop_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr != "" && endStr != "" {
		start, errS := time.Parse("2006-01-02", startStr)
		end, errE := time.Parse("2006-01-02", endStr)
		if errS != nil || errE != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be formatted YYYY-MM-DD"})
			return
		}
		sales, err := h.saleService.GetSalesByDateRange(shopID, start, end.AddDate(0, 0, 1))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sales": sales})
		return
	}

	sales, err := h.saleService.GetSalesByShop(shopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
