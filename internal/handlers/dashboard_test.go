package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doctrack-be/internal/models"
	"doctrack-be/internal/tabular"
	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"
)

func newDashboardRouter(rows []models.Customer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	registry := view.NewRegistry(
		func() *view.CustomerView {
			return view.NewCustomerView(func(ctx context.Context) ([]models.Customer, error) {
				return rows, nil
			}, nil, view.DefaultRefreshInterval)
		},
		func() *view.DocumentBrowser { return nil },
	)

	h := NewDashboardHandler(registry)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", "u-1") })
	r.GET("/dashboard/customers", h.GetCustomers)
	r.POST("/dashboard/search", h.Search)
	r.POST("/dashboard/sort", h.Sort)
	r.POST("/dashboard/page", h.Page)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDashboardSortSearchFlow(t *testing.T) {
	rows := []models.Customer{
		{ID: "5", Name: "Five", Total: 10, Active: true},
		{ID: "2", Name: "Two", Total: 30, Active: true},
		{ID: "9", Name: "Nine", Total: 20, Active: true},
	}
	r := newDashboardRouter(rows)

	// First access loads the collection.
	w := doJSON(t, r, http.MethodGet, "/dashboard/customers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get customers: status %d: %s", w.Code, w.Body.String())
	}

	// Sort by total twice: descending.
	doJSON(t, r, http.MethodPost, "/dashboard/sort", `{"column":"total"}`)
	w = doJSON(t, r, http.MethodPost, "/dashboard/sort", `{"column":"total"}`)

	var p tabular.Projection
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if len(p.Rows) != 3 || p.Rows[0].ID != "2" || p.Rows[1].ID != "9" || p.Rows[2].ID != "5" {
		t.Fatalf("descending rows = %+v", p.Rows)
	}

	// Search narrows within the sorted view and resets the page.
	w = doJSON(t, r, http.MethodPost, "/dashboard/search", `{"text":"9"}`)
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if p.Total != 1 || p.Rows[0].ID != "9" || p.Page != 0 {
		t.Fatalf("searched projection = %+v", p)
	}
}

func TestDashboardSortRejectsMissingColumn(t *testing.T) {
	r := newDashboardRouter(nil)
	w := doJSON(t, r, http.MethodPost, "/dashboard/sort", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDashboardPageClamped(t *testing.T) {
	rows := make([]models.Customer, 12)
	for i := range rows {
		rows[i] = models.Customer{ID: string(rune('a' + i)), Active: true}
	}
	r := newDashboardRouter(rows)
	doJSON(t, r, http.MethodGet, "/dashboard/customers", "")

	w := doJSON(t, r, http.MethodPost, "/dashboard/page", `{"page":99}`)
	var p tabular.Projection
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if p.Page != 1 {
		t.Fatalf("page = %d, want clamp to 1", p.Page)
	}
}
