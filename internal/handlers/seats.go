package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// SeatState - GET /api/v1/seats/state?session_id=&ticket_type_id=
// Sold and currently-locked seat ids for one (session, ticket type) pair.
func (h *Handlers) SeatState(c *gin.Context) {
	sessionID, ok := queryID(c, "session_id")
	if !ok {
		return
	}
	ticketTypeID, ok := queryID(c, "ticket_type_id")
	if !ok {
		return
	}

	state, err := h.services.Seats.State(c.Request.Context(), sessionID, ticketTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if state.Sold == nil {
		state.Sold = []int64{}
	}
	if state.Locked == nil {
		state.Locked = []int64{}
	}

	c.JSON(http.StatusOK, state)
}

// SeatMap - GET /api/v1/seats/map?event_id=&session_id=
// The event's seats grouped by row. session_id overlays per-session sold
// status.
func (h *Handlers) SeatMap(c *gin.Context) {
	eventID, ok := queryID(c, "event_id")
	if !ok {
		return
	}

	var sessionID *int64
	if s := c.Query("session_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id must be a positive integer"})
			return
		}
		sessionID = &id
	}

	seatMap, err := h.services.Seats.Map(c.Request.Context(), eventID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, seatMap)
}

// CreateSeats - POST /api/v1/seats
// Admin only. Provisions a section/row/number grid for an event.
func (h *Handlers) CreateSeats(c *gin.Context) {
	var req models.CreateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.services.Seats.CreateGrid(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": created})
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}
