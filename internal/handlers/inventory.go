package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// ListInventory - GET /api/v1/inventory
// Optional session_id/ticket_type_id filters.
func (h *Handlers) ListInventory(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	var sessionID, ticketTypeID *int64
	if s := c.Query("session_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id must be an integer"})
			return
		}
		sessionID = &id
	}
	if s := c.Query("ticket_type_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticket_type_id must be an integer"})
			return
		}
		ticketTypeID = &id
	}

	items, err := h.services.Inventory.List(c.Request.Context(), sessionID, ticketTypeID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.Inventory{}
	}

	c.JSON(http.StatusOK, items)
}

// CreateInventory - POST /api/v1/inventory
// Admin only. Idempotent: an existing record for the pair is returned as-is.
func (h *Handlers) CreateInventory(c *gin.Context) {
	var req models.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.services.Inventory.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// UpdateInventory - PATCH /api/v1/inventory/:id
// Admin only.
func (h *Handlers) UpdateInventory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.services.Inventory.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}
