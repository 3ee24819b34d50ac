package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shop_manager/internal/services"
)

// stubSaleService returns canned results so the handler's status mapping can
// be exercised without a database.
type stubSaleService struct {
	view *services.SaleView
	err  error
}

func (s *stubSaleService) CreateSale(*services.CreateSaleRequest) (*services.SaleView, error) {
	return s.view, s.err
}

func (s *stubSaleService) UpdateSale(uint, *services.UpdateSaleRequest) (*services.SaleView, error) {
	return s.view, s.err
}

func (s *stubSaleService) DeleteSale(uint) error { return s.err }

func (s *stubSaleService) GetSale(uint) (*services.SaleView, error) { return s.view, s.err }

func (s *stubSaleService) GetSalesByShop(uint) ([]services.SaleView, error) { return nil, s.err }

func (s *stubSaleService) GetSalesBySalesman(uint) ([]services.SaleView, error) { return nil, s.err }

func (s *stubSaleService) GetSalesByDateRange(uint, time.Time, time.Time) ([]services.SaleView, error) {
	return nil, s.err
}

func saleRouter(svc services.SaleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewSaleHandler(svc)
	router.POST("/api/sales", handler.CreateSale)
	router.GET("/api/sales/:id", handler.GetSale)
	router.DELETE("/api/sales/:id", handler.DeleteSale)
	return router
}

func TestCreateSaleStatusMapping(t *testing.T) {
	verr := &services.ValidationError{Fields: map[string]string{"quantity": "must be at least 1"}}
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation fault", verr, http.StatusUnprocessableEntity},
		{"rule misconfiguration", &services.RuleEvaluationError{RuleID: 1, Reason: "tier gap"}, http.StatusUnprocessableEntity},
		{"storage failure", &services.PersistenceError{Op: "create sale", Err: errors.New("down")}, http.StatusInternalServerError},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError},
	}

	body := `{"shop_id":1,"product_name":"x","customer_name":"y","quantity":1,"selling_price":100}`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := saleRouter(&stubSaleService{err: tt.err})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreateSaleValidationFieldsInBody(t *testing.T) {
	verr := &services.ValidationError{Fields: map[string]string{"quantity": "must be at least 1"}}
	router := saleRouter(&stubSaleService{err: verr})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(`{"shop_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "quantity")
}

func TestCreateSaleRejectsMalformedJSON(t *testing.T) {
	router := saleRouter(&stubSaleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSaleNotFound(t *testing.T) {
	router := saleRouter(&stubSaleService{err: gorm.ErrRecordNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sales/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSaleRejectsBadID(t *testing.T) {
	router := saleRouter(&stubSaleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sales/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteSale(t *testing.T) {
	router := saleRouter(&stubSaleService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/sales/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
