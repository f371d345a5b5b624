package handlers

import (
	"net/http"

	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"
)

// DashboardHandler exposes the per-user customer table view: the current
// projection plus the user actions that mutate it. User actions re-derive
// the visible slice in memory without a network round trip.
type DashboardHandler struct {
	registry *view.Registry
}

func NewDashboardHandler(registry *view.Registry) *DashboardHandler {
	return &DashboardHandler{registry: registry}
}

// ========== Request Types ==========

type SearchRequest struct {
	Text string `json:"text"`
}

type SortRequest struct {
	Column string `json:"column" binding:"required"`
}

type PageRequest struct {
	Page     *int `json:"page"`
	PageSize *int `json:"pageSize"`
}

// ========== Handlers ==========

// GetCustomers godoc
// @Summary Get the current dashboard projection
// @Description Returns the visible page of the searched, sorted customer table
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} tabular.Projection
// @Failure 401 {object} models.ErrorResponse
// @Router /dashboard/customers [get]
func (h *DashboardHandler) GetCustomers(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	// First access loads the collection; afterwards change notifications
	// keep it fresh.
	if v.Engine().Version() == 0 {
		v.Refresh(c.Request.Context())
	}

	projection := v.Engine().Snapshot()
	response := gin.H{"projection": projection}
	if err := v.Err(); err != nil {
		// Non-fatal: the previous projection is still served.
		response["refreshError"] = "Failed to refresh customers; showing last known data"
	}
	c.JSON(http.StatusOK, response)
}

// Search godoc
// @Summary Set the dashboard search text
// @Tags dashboard
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body SearchRequest true "Search text; blank clears the filter"
// @Success 200 {object} tabular.Projection
// @Router /dashboard/search [post]
func (h *DashboardHandler) Search(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v.Engine().SetSearchText(req.Text)
	c.JSON(http.StatusOK, v.Engine().Snapshot())
}

// Sort godoc
// @Summary Sort the dashboard by a column
// @Description Re-sorting by the current column flips direction
// @Tags dashboard
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body SortRequest true "Column key"
// @Success 200 {object} tabular.Projection
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/sort [post]
func (h *DashboardHandler) Sort(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v.Engine().SortBy(req.Column)
	c.JSON(http.StatusOK, v.Engine().Snapshot())
}

// Page godoc
// @Summary Change the dashboard page or page size
// @Tags dashboard
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body PageRequest true "Zero-based page and/or page size"
// @Success 200 {object} tabular.Projection
// @Router /dashboard/page [post]
func (h *DashboardHandler) Page(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PageSize != nil {
		v.Engine().SetPageSize(*req.PageSize)
	}
	if req.Page != nil {
		v.Engine().SetPage(*req.Page)
	}
	c.JSON(http.StatusOK, v.Engine().Snapshot())
}

// Refresh godoc
// @Summary Request a manual dashboard refresh
// @Description Subject to the same debounce as change-stream refreshes
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} tabular.Projection
// @Router /dashboard/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	v.Refresh(c.Request.Context())
	response := gin.H{"projection": v.Engine().Snapshot()}
	if err := v.Err(); err != nil {
		response["refreshError"] = "Failed to refresh customers; showing last known data"
	}
	c.JSON(http.StatusOK, response)
}

// DismissError godoc
// @Summary Dismiss the surfaced refresh error
// @Tags dashboard
// @Security ApiKeyAuth
// @Success 200 {object} map[string]bool
// @Router /dashboard/error [delete]
func (h *DashboardHandler) DismissError(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	v.DismissErr()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *DashboardHandler) view(c *gin.Context) (*view.CustomerView, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return h.registry.CustomerView(userID.(string)), true
}
