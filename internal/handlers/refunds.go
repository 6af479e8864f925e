package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/logger"
	"kassa/internal/middleware"
	"kassa/internal/models"
)

// RequestRefund - POST /api/v1/tickets/:id/refund-request
func (h *Handlers) RequestRefund(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.RefundRequestCreate
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refund, err := h.services.Refunds.Request(c.Request.Context(), userID, ticketID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, refund)
}

// ApproveRefund - POST /api/v1/refunds/:id/approve
// Admin only. Runs the full compensation in one transaction.
func (h *Handlers) ApproveRefund(c *gin.Context) {
	reviewerID, _ := middleware.UserID(c)
	refundID, ok := pathID(c, "id")
	if !ok {
		return
	}

	refund, err := h.services.Refunds.Approve(c.Request.Context(), reviewerID, refundID)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("Refund approval failed",
			"error", err, "refund_id", refundID, "reviewer_id", reviewerID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}

// RejectRefund - POST /api/v1/refunds/:id/reject
// Admin only.
func (h *Handlers) RejectRefund(c *gin.Context) {
	reviewerID, _ := middleware.UserID(c)
	refundID, ok := pathID(c, "id")
	if !ok {
		return
	}

	refund, err := h.services.Refunds.Reject(c.Request.Context(), reviewerID, refundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}

// ListRefunds - GET /api/v1/refunds
// Admin only. Optional status filter.
func (h *Handlers) ListRefunds(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	var status *models.RefundStatus
	if s := c.Query("status"); s != "" {
		v := models.RefundStatus(s)
		status = &v
	}

	refunds, err := h.services.Refunds.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if refunds == nil {
		refunds = []models.Refund{}
	}

	c.JSON(http.StatusOK, refunds)
}
