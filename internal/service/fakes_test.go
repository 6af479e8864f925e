package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kassa/internal/models"
)

// In-memory fakes for the repository interfaces. Each fake applies the same
// conditional-update semantics as the SQL it stands in for, guarded by a
// mutex so the concurrency tests exercise real interleavings.

type invKey struct {
	sessionID    int64
	ticketTypeID int64
}

type fakeInventory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[invKey]*models.Inventory
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{rows: make(map[invKey]*models.Inventory)}
}

func (f *fakeInventory) ReserveUnit(_ context.Context, sessionID, ticketTypeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[invKey{sessionID, ticketTypeID}]
	if !ok || inv.Available <= 0 {
		return false, nil
	}
	inv.Available--
	return true, nil
}

func (f *fakeInventory) ReleaseUnit(_ context.Context, sessionID, ticketTypeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[invKey{sessionID, ticketTypeID}]
	if !ok {
		return fmt.Errorf("inventory %d/%d not found", sessionID, ticketTypeID)
	}
	if inv.Available < inv.Total {
		inv.Available++
	}
	return nil
}

func (f *fakeInventory) EnsureRecord(_ context.Context, sessionID, ticketTypeID, price int64, total int) (*models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := invKey{sessionID, ticketTypeID}
	if inv, ok := f.rows[key]; ok {
		return copyInv(inv), nil
	}
	f.nextID++
	inv := &models.Inventory{
		ID:           f.nextID,
		SessionID:    sessionID,
		TicketTypeID: ticketTypeID,
		Price:        price,
		Total:        total,
		Available:    total,
	}
	f.rows[key] = inv
	return copyInv(inv), nil
}

func (f *fakeInventory) GetByKey(_ context.Context, sessionID, ticketTypeID int64) (*models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[invKey{sessionID, ticketTypeID}]
	if !ok {
		return nil, nil
	}
	return copyInv(inv), nil
}

func (f *fakeInventory) GetByID(_ context.Context, id int64) (*models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.rows {
		if inv.ID == id {
			return copyInv(inv), nil
		}
	}
	return nil, nil
}

func (f *fakeInventory) List(_ context.Context, sessionID, ticketTypeID *int64, _, _ int) ([]models.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Inventory
	for _, inv := range f.rows {
		if sessionID != nil && inv.SessionID != *sessionID {
			continue
		}
		if ticketTypeID != nil && inv.TicketTypeID != *ticketTypeID {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeInventory) AdjustTotal(_ context.Context, id int64, newTotal int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.rows {
		if inv.ID == id {
			inv.Available += newTotal - inv.Total
			if inv.Available < 0 {
				inv.Available = 0
			}
			inv.Total = newTotal
			return nil
		}
	}
	return fmt.Errorf("inventory %d not found", id)
}

func (f *fakeInventory) SetPrice(_ context.Context, id, price int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.rows {
		if inv.ID == id {
			inv.Price = price
			return nil
		}
	}
	return fmt.Errorf("inventory %d not found", id)
}

func copyInv(inv *models.Inventory) *models.Inventory {
	c := *inv
	return &c
}

type fakeSeats struct {
	mu    sync.Mutex
	seats map[int64]*models.Seat
}

func newFakeSeats() *fakeSeats {
	return &fakeSeats{seats: make(map[int64]*models.Seat)}
}

func (f *fakeSeats) add(seat models.Seat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := seat
	f.seats[seat.ID] = &s
}

func (f *fakeSeats) GetByID(_ context.Context, id int64) (*models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[id]
	if !ok {
		return nil, nil
	}
	c := *seat
	return &c, nil
}

func (f *fakeSeats) TryLock(_ context.Context, seatID, eventID int64, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok || seat.EventID != eventID {
		return false, nil
	}
	expired := seat.Status == models.SeatLocked &&
		seat.LockedUntil != nil && seat.LockedUntil.Before(time.Now())
	if seat.Status != models.SeatAvailable && !expired {
		return false, nil
	}
	until := time.Now().Add(ttl)
	seat.Status = models.SeatLocked
	seat.LockedUntil = &until
	return true, nil
}

func (f *fakeSeats) MarkSold(_ context.Context, seatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok || seat.Status != models.SeatLocked {
		return fmt.Errorf("seat %d is not locked", seatID)
	}
	seat.Status = models.SeatSold
	seat.LockedUntil = nil
	return nil
}

func (f *fakeSeats) Release(_ context.Context, seatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok {
		return fmt.Errorf("seat %d not found", seatID)
	}
	if seat.Status == models.SeatLocked || seat.Status == models.SeatSold {
		seat.Status = models.SeatAvailable
		seat.LockedUntil = nil
	}
	return nil
}

func (f *fakeSeats) ListByEvent(_ context.Context, eventID int64) ([]models.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Seat
	for id := int64(1); id <= int64(len(f.seats)); id++ {
		if seat, ok := f.seats[id]; ok && seat.EventID == eventID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeSeats) LockedSeatIDs(_ context.Context, eventID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for id := int64(1); id <= int64(len(f.seats)); id++ {
		seat, ok := f.seats[id]
		if !ok || seat.EventID != eventID || seat.Status != models.SeatLocked {
			continue
		}
		if seat.LockedUntil != nil && seat.LockedUntil.Before(time.Now()) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeSeats) CreateGrid(_ context.Context, eventID int64, section string, rowCount, seatsPerRow int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := 0
	for r := 1; r <= rowCount; r++ {
		row := fmt.Sprintf("%d", r)
		for n := 1; n <= seatsPerRow; n++ {
			num := fmt.Sprintf("%d", n)
			id := int64(len(f.seats) + 1)
			seat := &models.Seat{ID: id, EventID: eventID, Row: &row, Number: &num, Status: models.SeatAvailable}
			if section != "" {
				sec := section
				seat.Section = &sec
			}
			f.seats[id] = seat
			created++
		}
	}
	return created, nil
}

type fakeBalances struct {
	mu      sync.Mutex
	credits map[int64]int64
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{credits: make(map[int64]int64)}
}

func (f *fakeBalances) Debit(_ context.Context, userID, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credits[userID] < amount {
		return false, nil
	}
	f.credits[userID] -= amount
	return true, nil
}

func (f *fakeBalances) Credit(_ context.Context, userID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.credits[userID]; !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	f.credits[userID] += amount
	return nil
}

func (f *fakeBalances) balance(userID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits[userID]
}

type fakeCatalog struct {
	sessions    map[int64]*models.EventSession
	ticketTypes map[int64]*models.TicketType
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		sessions:    make(map[int64]*models.EventSession),
		ticketTypes: make(map[int64]*models.TicketType),
	}
}

func (f *fakeCatalog) GetSession(_ context.Context, id int64) (*models.EventSession, error) {
	return f.sessions[id], nil
}

func (f *fakeCatalog) GetTicketType(_ context.Context, id int64) (*models.TicketType, error) {
	return f.ticketTypes[id], nil
}

type fakeTickets struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*models.Ticket
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{tickets: make(map[int64]*models.Ticket)}
}

func (f *fakeTickets) Create(_ context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ticket.ID = f.nextID
	c := *ticket
	f.tickets[ticket.ID] = &c
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}
	c := *ticket
	return &c, nil
}

func (f *fakeTickets) ListByUser(_ context.Context, userID int64, status *models.TicketStatus, _, _ int) ([]models.TicketListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TicketListItem
	for id := int64(1); id <= f.nextID; id++ {
		t, ok := f.tickets[id]
		if !ok || t.UserID != userID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, models.TicketListItem{
			ID:           t.ID,
			SessionID:    t.SessionID,
			TicketTypeID: t.TicketTypeID,
			SeatID:       t.SeatID,
			Status:       t.Status,
		})
	}
	return out, nil
}

func (f *fakeTickets) SoldSeatIDs(_ context.Context, sessionID int64, ticketTypeID *int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for id := int64(1); id <= f.nextID; id++ {
		t, ok := f.tickets[id]
		if !ok || t.SessionID != sessionID || t.SeatID == nil {
			continue
		}
		if ticketTypeID != nil && t.TicketTypeID != *ticketTypeID {
			continue
		}
		if t.Status == models.TicketActive || t.Status == models.TicketUsed {
			out = append(out, *t.SeatID)
		}
	}
	return out, nil
}

func (f *fakeTickets) UpdateStatusFrom(_ context.Context, id int64, from []models.TicketStatus, to models.TicketStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if ticket.Status == s {
			ticket.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTickets) SetQRPayload(_ context.Context, id int64, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return fmt.Errorf("ticket %d not found", id)
	}
	ticket.QRPayload = &payload
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	nextID   int64
	payments []*models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{}
}

func (f *fakePayments) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	payment.ID = f.nextID
	c := *payment
	f.payments = append(f.payments, &c)
	return nil
}

func (f *fakePayments) LatestByTicket(_ context.Context, ticketID int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.payments) - 1; i >= 0; i-- {
		if f.payments[i].TicketID == ticketID {
			c := *f.payments[i]
			return &c, nil
		}
	}
	return nil, nil
}

type fakeRefunds struct {
	mu      sync.Mutex
	nextID  int64
	refunds map[int64]*models.Refund
}

func newFakeRefunds() *fakeRefunds {
	return &fakeRefunds{refunds: make(map[int64]*models.Refund)}
}

func (f *fakeRefunds) Create(_ context.Context, refund *models.Refund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	refund.ID = f.nextID
	c := *refund
	f.refunds[refund.ID] = &c
	return nil
}

func (f *fakeRefunds) GetByID(_ context.Context, id int64) (*models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refund, ok := f.refunds[id]
	if !ok {
		return nil, nil
	}
	c := *refund
	return &c, nil
}

func (f *fakeRefunds) HasRequested(_ context.Context, ticketID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.refunds {
		if r.TicketID == ticketID && r.Status == models.RefundRequested {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRefunds) Decide(_ context.Context, id, reviewerID int64, to models.RefundStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refund, ok := f.refunds[id]
	if !ok || refund.Status != models.RefundRequested {
		return false, nil
	}
	refund.Status = to
	refund.ReviewedBy = &reviewerID
	return true, nil
}

func (f *fakeRefunds) List(_ context.Context, status *models.RefundStatus, _, _ int) ([]models.Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Refund
	for id := int64(1); id <= f.nextID; id++ {
		r, ok := f.refunds[id]
		if !ok {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

// passTx runs the function directly. The fakes apply mutations eagerly, so
// tests that need rollback semantics arrange for failures to occur before
// any mutation.
type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordPublisher) Publish(subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}
