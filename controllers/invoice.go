package controllers

import (
	"net/http"

	"studiocrm-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvoiceController struct {
	invoices *services.InvoiceService
	log      *zap.Logger
}

func NewInvoiceController(invoices *services.InvoiceService, log *zap.Logger) *InvoiceController {
	return &InvoiceController{invoices: invoices, log: log}
}

// @Summary Download an order document
// @Tags invoices
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "order id"
// @Param type query string false "invoice, bill or quotation" default(invoice)
// @Success 200 {file} file
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /api/orders/{id}/pdf [get]
func (ic *InvoiceController) DownloadPDF(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	docType, err := services.ParseDocumentType(c.Query("type"))
	if err != nil {
		respondWithServiceError(c, ic.log, err, "Invalid document type")
		return
	}

	data, filename, err := ic.invoices.Document(c.Request.Context(), userID, id, docType)
	if err != nil {
		respondWithServiceError(c, ic.log, err, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", "inline; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
