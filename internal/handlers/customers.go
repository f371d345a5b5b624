package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"doctrack-be/internal/models"
	"doctrack-be/internal/notify"
	"doctrack-be/internal/repository"
	"doctrack-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"
)

// Notifier publishes change signals after writes so open dashboards refresh.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

type CustomerHandler struct {
	customerRepo *repository.CustomerRepository
	notifier     Notifier
}

func NewCustomerHandler(customerRepo *repository.CustomerRepository, notifier Notifier) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo, notifier: notifier}
}

// ========== Management Endpoints ==========

// ListCustomers godoc
// @Summary List all customers including inactive ones
// @Tags customers
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.Customer
// @Failure 500 {object} models.ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	customers, err := h.customerRepo.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list customers",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer godoc
// @Summary Get one customer
// @Tags customers
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} models.ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	customer, err := h.customerRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch customer",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer godoc
// @Summary Create a customer
// @Description Counters start at zero; the acting admin is recorded as the updater
// @Tags customers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body models.CreateCustomerRequest true "New customer"
// @Success 201 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.customerRepo.GetByID(ctx, req.ID); err == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Customer ID already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create customer",
			Message: err.Error(),
		})
		return
	}

	customer := models.Customer{
		ID:             req.ID,
		Name:           utils.SanitizeText(req.Name),
		Active:         req.Active,
		AdminMail:      utils.SanitizeText(req.AdminMail),
		Source:         utils.SanitizeText(req.Source),
		SourceRoot:     utils.SanitizeText(req.SourceRoot),
		UpdatedByKind:  models.ActorKindID,
		UpdatedByValue: userID.(string),
	}
	if err := h.customerRepo.Create(ctx, &customer); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create customer",
			Message: err.Error(),
		})
		return
	}

	h.notifier.Notify(ctx, notify.TopicCustomers)
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer godoc
// @Summary Update a customer's mutable fields
// @Description Only fields present in the payload change. Counter changes also signal the stats topic.
// @Tags customers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param payload body models.UpdateCustomerRequest true "Changed fields"
// @Success 200 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	if _, err := h.customerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update customer",
			Message: err.Error(),
		})
		return
	}

	updates := map[string]interface{}{}
	countersChanged := false
	if req.Name != "" {
		updates["name"] = utils.SanitizeText(req.Name)
	}
	if req.InProcess != nil {
		if *req.InProcess < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Counters cannot be negative"})
			return
		}
		updates["in_process"] = *req.InProcess
		countersChanged = true
	}
	if req.Other != nil {
		if *req.Other < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Counters cannot be negative"})
			return
		}
		updates["other"] = *req.Other
		countersChanged = true
	}
	if req.Inbox != nil {
		if *req.Inbox < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Counters cannot be negative"})
			return
		}
		updates["inbox"] = *req.Inbox
		countersChanged = true
	}
	if req.Active != nil {
		updates["active"] = *req.Active
		countersChanged = true
	}
	if req.AdminMail != nil {
		updates["admin_mail"] = utils.SanitizeText(*req.AdminMail)
	}
	if req.Source != nil {
		updates["source"] = utils.SanitizeText(*req.Source)
	}
	if req.SourceRoot != nil {
		updates["source_root"] = utils.SanitizeText(*req.SourceRoot)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No fields to update"})
		return
	}

	actor := models.ActorRef{Kind: models.ActorKindID, Value: userID.(string)}
	if err := h.customerRepo.Update(ctx, id, updates, actor); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update customer",
			Message: err.Error(),
		})
		return
	}

	h.notifier.Notify(ctx, notify.TopicCustomers)
	if countersChanged {
		h.notifier.Notify(ctx, notify.TopicStatsUpdate)
	}

	customer, err := h.customerRepo.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to fetch updated customer",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer godoc
// @Summary Delete a customer and its documents
// @Tags customers
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	if _, err := h.customerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to delete customer",
			Message: err.Error(),
		})
		return
	}

	if err := h.customerRepo.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to delete customer",
			Message: err.Error(),
		})
		return
	}

	h.notifier.Notify(ctx, notify.TopicCustomers)
	h.notifier.Notify(ctx, notify.TopicStatsUpdate)
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// ========== Suggestions ==========

type customerNames []models.Customer

func (c customerNames) String(i int) string { return c[i].Name }
func (c customerNames) Len() int            { return len(c) }

// Suggest godoc
// @Summary Fuzzy-match customer names for the search box
// @Tags customers
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Partial name"
// @Success 200 {array} models.Customer
// @Router /customers/suggestions [get]
func (h *CustomerHandler) Suggest(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []models.Customer{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	customers, err := h.customerRepo.GetActive(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load customers",
			Message: err.Error(),
		})
		return
	}

	matches := fuzzy.FindFrom(query, customerNames(customers))
	const maxSuggestions = 8
	results := make([]models.Customer, 0, maxSuggestions)
	for _, m := range matches {
		results = append(results, customers[m.Index])
		if len(results) == maxSuggestions {
			break
		}
	}
	c.JSON(http.StatusOK, results)
}
