package controllers

import (
	"net/http"

	"studiocrm-backend/models"
	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerController struct {
	customers *services.CustomerService
	log       *zap.Logger
}

func NewCustomerController(customers *services.CustomerService, log *zap.Logger) *CustomerController {
	return &CustomerController{customers: customers, log: log}
}

// CustomerDetail is a customer with one page of their orders.
type CustomerDetail struct {
	Customer *models.Customer `json:"customer"`
	Orders   pagedResult      `json:"orders"`
}

// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CustomerInput true "customer"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /api/customers [post]
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := cc.customers.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to create customer")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Customer created successfully", customer)
}

// GetCustomers supports ?search= over name, mobile and city.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	p := utils.GetPagination(c)
	customers, total, err := cc.customers.List(c.Request.Context(), userID, c.Query("search"), p)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to retrieve customers")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: customers, Meta: p.Meta(total)})
}

// GetCustomer returns the customer and a page of their orders, filtered by ?venue=.
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	customer, err := cc.customers.Get(ctx, userID, id)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to retrieve customer")
		return
	}

	p := utils.GetPagination(c)
	orders, total, err := cc.customers.Orders(ctx, userID, id, c.Query("venue"), p)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to retrieve customer orders")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, "", CustomerDetail{
		Customer: customer,
		Orders:   pagedResult{Items: orders, Meta: p.Meta(total)},
	})
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input services.CustomerUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := cc.customers.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to update customer")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Customer updated successfully", customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := cc.customers.Delete(c.Request.Context(), userID, id); err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to delete customer")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Customer deleted successfully", nil)
}

func (cc *CustomerController) BulkDeleteCustomers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input idsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	deleted, err := cc.customers.BulkDelete(c.Request.Context(), userID, input.IDs)
	if err != nil {
		respondWithServiceError(c, cc.log, err, "Failed to delete customers")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Customers deleted successfully", gin.H{"deleted": deleted})
}
