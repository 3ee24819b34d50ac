package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_manager/internal/services"
)

type WarrantyHandler struct {
	warrantyService services.WarrantyService
}

func NewWarrantyHandler(warrantyService services.WarrantyService) *WarrantyHandler {
	return &WarrantyHandler{warrantyService: warrantyService}
}

// FileWarranty registers a warranty; the linked sale is created in the same
// transaction.
func (h *WarrantyHandler) FileWarranty(c *gin.Context) {
	var req services.FileWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	warranty, err := h.warrantyService.FileWarranty(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, warranty)
}

func (h *WarrantyHandler) GetWarranty(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid warranty id"})
		return
	}

	warranty, err := h.warrantyService.GetWarranty(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, warranty)
}

func (h *WarrantyHandler) GetWarranties(c *gin.Context) {
	shopID, err := parseID(c.Query("shop_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	warranties, err := h.warrantyService.GetWarrantiesByShop(shopID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"warranties": warranties})
}

// LookupByIMEI finds the warranty covering a device.
func (h *WarrantyHandler) LookupByIMEI(c *gin.Context) {
	warranty, err := h.warrantyService.LookupByIMEI(c.Query("imei"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, warranty)
}

// GetExpiring lists warranties expiring within the next N days (default 30).
func (h *WarrantyHandler) GetExpiring(c *gin.Context) {
	shopID, err := parseID(c.Query("shop_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop_id is required"})
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
	}

	warranties, err := h.warrantyService.GetExpiring(shopID, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"warranties": warranties})
}
