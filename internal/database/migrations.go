package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createEventsTable,
		createEventSessionsTable,
		createTicketTypesTable,
		createSeatsTable,
		createInventoryTable,
		createTicketsTable,
		createPaymentsTable,
		createRefundsTable,
		createRefundRequestedIndex,
		createTicketUserIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(150) NOT NULL,
    email VARCHAR(254) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'customer',
    credit BIGINT NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('customer', 'admin')),
    CHECK (credit >= 0)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    description TEXT,
    status VARCHAR(20) NOT NULL DEFAULT 'published',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('draft', 'published', 'cancelled'))
);`

const createEventSessionsTable = `
CREATE TABLE IF NOT EXISTS event_sessions (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    starts_at TIMESTAMP NOT NULL,
    capacity INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTicketTypesTable = `
CREATE TABLE IF NOT EXISTS ticket_types (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(120) NOT NULL,
    price BIGINT NOT NULL DEFAULT 0,
    total_stock INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    section VARCHAR(50),
    row_label VARCHAR(20),
    seat_number VARCHAR(20),
    status VARCHAR(20) NOT NULL DEFAULT 'available',
    locked_until TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('available', 'locked', 'sold', 'disabled'))
);`

const createInventoryTable = `
CREATE TABLE IF NOT EXISTS ticket_inventory (
    id SERIAL PRIMARY KEY,
    session_id INTEGER NOT NULL REFERENCES event_sessions(id) ON DELETE CASCADE,
    ticket_type_id INTEGER NOT NULL REFERENCES ticket_types(id) ON DELETE CASCADE,
    price BIGINT NOT NULL DEFAULT 0,
    total INTEGER NOT NULL DEFAULT 0,
    available INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(session_id, ticket_type_id),
    CHECK (available >= 0),
    CHECK (available <= total)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    session_id INTEGER NOT NULL REFERENCES event_sessions(id),
    ticket_type_id INTEGER NOT NULL REFERENCES ticket_types(id),
    seat_id INTEGER REFERENCES seats(id),
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    qr_payload TEXT,
    purchased_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending', 'active', 'used', 'cancelled', 'refunded'))
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id SERIAL PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    amount BIGINT NOT NULL DEFAULT 0,
    method VARCHAR(20) NOT NULL DEFAULT 'credit',
    status VARCHAR(20) NOT NULL DEFAULT 'paid',
    transaction_id VARCHAR(128) UNIQUE NOT NULL,
    paid_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (method IN ('credit')),
    CHECK (status IN ('pending', 'paid', 'failed', 'refunded'))
);`

const createRefundsTable = `
CREATE TABLE IF NOT EXISTS refunds (
    id SERIAL PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    amount BIGINT NOT NULL DEFAULT 0,
    reason TEXT,
    status VARCHAR(20) NOT NULL DEFAULT 'requested',
    reviewed_by INTEGER REFERENCES users(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('requested', 'approved', 'rejected', 'completed'))
);`

// At most one outstanding refund request per ticket.
const createRefundRequestedIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS refunds_requested_per_ticket_idx
ON refunds (ticket_id) WHERE status = 'requested';`

const createTicketUserIndex = `
CREATE INDEX IF NOT EXISTS tickets_user_idx ON tickets (user_id, status);`
