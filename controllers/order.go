package controllers

import (
	"net/http"
	"time"

	"studiocrm-backend/services"
	"studiocrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderController struct {
	orders  *services.OrderService
	exports *services.ExportService
	log     *zap.Logger
}

func NewOrderController(orders *services.OrderService, exports *services.ExportService, log *zap.Logger) *OrderController {
	return &OrderController{orders: orders, exports: exports, log: log}
}

type bulkStatusInput struct {
	idsInput
	Status string `json:"status" binding:"required"`
}

// @Summary Create an order
// @Description Takes either customerId or an inline customer, which is matched by mobile or created.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.OrderInput true "order"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	order, err := oc.orders.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to create order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Order created successfully", order)
}

// GetOrders accepts ?search=, ?status=, ?sortBy= and ?sortOrder=asc|desc.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	q := services.OrderListQuery{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Pagination: utils.GetPagination(c),
	}
	orders, total, err := oc.orders.List(c.Request.Context(), userID, q)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to retrieve orders")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", pagedResult{Items: orders, Meta: q.Pagination.Meta(total)})
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := oc.orders.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to retrieve order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", order)
}

// @Summary Update an order
// @Description Present fields replace stored ones and totals are recalculated.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Param body body services.OrderUpdate true "fields to change"
// @Success 200 {object} utils.Response
// @Router /api/orders/{id} [put]
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input services.OrderUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	order, err := oc.orders.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to update order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order updated successfully", order)
}

func (oc *OrderController) BulkUpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input bulkStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated, err := oc.orders.BulkUpdateStatus(c.Request.Context(), userID, input.IDs, input.Status)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to update orders")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order status updated", gin.H{"updated": updated})
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := oc.orders.Delete(c.Request.Context(), userID, id); err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to delete order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order deleted successfully", nil)
}

// @Summary Export orders as XLSX
// @Tags orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/orders/export [get]
func (oc *OrderController) ExportOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	data, err := oc.exports.OrdersWorkbook(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, oc.log, err, "Failed to export orders")
		return
	}

	filename := "orders-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}
