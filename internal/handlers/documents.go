package handlers

import (
	"errors"
	"net/http"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/services"
	"doctrack-be/internal/view"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DocumentHandler drives the per-user document browser and resolves stored
// documents into download links.
type DocumentHandler struct {
	registry     *view.Registry
	documentRepo *repository.DocumentRepository
	storage      *services.StorageService
}

func NewDocumentHandler(registry *view.Registry, documentRepo *repository.DocumentRepository, storage *services.StorageService) *DocumentHandler {
	return &DocumentHandler{registry: registry, documentRepo: documentRepo, storage: storage}
}

// ========== Request Types ==========

type DocumentFilterRequest struct {
	DateFrom *string  `json:"dateFrom"` // YYYY-MM-DD
	DateTo   *string  `json:"dateTo"`
	Types    []string `json:"types"`
	Name     *string  `json:"name"`
	Page     *int     `json:"page"`
}

// ========== Handlers ==========

// Open godoc
// @Summary Open the document browser for a customer
// @Description Filters reset only when switching to a different customer
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.DocumentPage
// @Failure 500 {object} models.ErrorResponse
// @Router /customers/{id}/documents [get]
func (h *DocumentHandler) Open(c *gin.Context) {
	browser, ok := h.browser(c)
	if !ok {
		return
	}

	browser.OpenFor(c.Param("id"))
	h.respondPage(c, browser)
}

// Filter godoc
// @Summary Apply document filters
// @Description Any filter change resets to the first page. Dates cover whole days.
// @Tags documents
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param payload body DocumentFilterRequest true "Filter changes; absent fields keep their value"
// @Success 200 {object} models.DocumentPage
// @Failure 400 {object} models.ErrorResponse
// @Router /customers/{id}/documents/filter [post]
func (h *DocumentHandler) Filter(c *gin.Context) {
	browser, ok := h.browser(c)
	if !ok {
		return
	}
	browser.OpenFor(c.Param("id"))

	var req DocumentFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Each bound merges independently: supplying only dateFrom keeps the
	// current dateTo. A present-but-blank value clears that bound.
	if req.DateFrom != nil {
		from, err := parseDay(req.DateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid dateFrom", Message: err.Error()})
			return
		}
		browser.SetDateFrom(from)
	}
	if req.DateTo != nil {
		to, err := parseDay(req.DateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid dateTo", Message: err.Error()})
			return
		}
		browser.SetDateTo(to)
	}
	if req.Types != nil {
		for _, t := range req.Types {
			if t != models.DocumentTypeInvoice && t != models.DocumentTypeOther {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Unknown document type: " + t})
				return
			}
		}
		browser.SetTypes(req.Types)
	}
	if req.Name != nil {
		browser.SetNameQuery(*req.Name)
	}
	if req.Page != nil {
		browser.SetPage(*req.Page)
	}

	h.respondPage(c, browser)
}

// Download godoc
// @Summary Get a time-limited download URL for a document
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param docId path string true "Document ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /documents/{docId}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	doc, err := h.documentRepo.GetByID(ctx, c.Param("docId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch document",
			Message: err.Error(),
		})
		return
	}

	url, err := h.storage.PresignDownload(ctx, doc.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to generate download link",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "name": doc.Name})
}

func (h *DocumentHandler) browser(c *gin.Context) (*view.DocumentBrowser, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return h.registry.DocumentBrowser(userID.(string)), true
}

func (h *DocumentHandler) respondPage(c *gin.Context, browser *view.DocumentBrowser) {
	page, err := browser.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load documents",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, page)
}

// parseDay accepts a YYYY-MM-DD string; nil or blank means no bound.
func parseDay(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
