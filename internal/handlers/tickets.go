package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/logger"
	"kassa/internal/middleware"
	"kassa/internal/models"
)

// Purchase - POST /api/v1/tickets/purchase
// Atomically settles one ticket for the authenticated buyer.
func (h *Handlers) Purchase(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.services.Purchase.Purchase(c.Request.Context(), userID, &req)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("Purchase failed",
			"error", err, "user_id", userID,
			"session_id", req.SessionID, "ticket_type_id", req.TicketTypeID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTicket - GET /api/v1/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.Get(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListMyTickets - GET /api/v1/tickets/my
func (h *Handlers) ListMyTickets(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	var status *models.TicketStatus
	if s := c.Query("status"); s != "" {
		v := models.TicketStatus(s)
		status = &v
	}

	items, err := h.services.Tickets.ListMy(c.Request.Context(), userID, status, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.TicketListItem{}
	}

	c.JSON(http.StatusOK, items)
}

// CreateTicket - POST /api/v1/tickets
// Admin-only creation outside the purchase workflow; the ticket starts
// pending and touches no ledger.
func (h *Handlers) CreateTicket(c *gin.Context) {
	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// TicketQR - GET /api/v1/tickets/:id/qr
// Renders the ticket's verification code as a PNG.
func (h *Handlers) TicketQR(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	png, err := h.services.Tickets.QRImage(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
