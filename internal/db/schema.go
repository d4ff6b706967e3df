package db

import "database/sql"

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS buses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(50) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		total_seats INT NOT NULL DEFAULT 0,
		fare BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_bus_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bus_seats (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		bus_id BIGINT NOT NULL,
		seat_code VARCHAR(10) NOT NULL,
		is_ladies_only TINYINT(1) NOT NULL DEFAULT 0,
		is_reserved_for_agent TINYINT(1) NOT NULL DEFAULT 0,
		reserved_agent_id BIGINT NULL,
		UNIQUE KEY uniq_bus_seat (bus_id, seat_code),
		KEY idx_bus (bus_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_no BIGINT NOT NULL,
		reference CHAR(36) NOT NULL,
		bus_id BIGINT NOT NULL,
		travel_date DATE NOT NULL,
		session_id VARCHAR(100) NOT NULL DEFAULT '',
		seat_codes VARCHAR(500) NOT NULL DEFAULT '',
		passenger_name VARCHAR(255) NOT NULL DEFAULT '',
		passenger_phone VARCHAR(100) NOT NULL DEFAULT '',
		total_amount BIGINT NOT NULL DEFAULT 0,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		payment_method VARCHAR(50) NOT NULL DEFAULT '',
		cancel_reason VARCHAR(255) NOT NULL DEFAULT '',
		payment_expires_at DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_reference (reference),
		KEY idx_trip (bus_id, travel_date),
		KEY idx_status_expiry (payment_status, payment_expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	// Hold rows: one row per seat under a PAID booking or an active
	// PENDING booking. The unique key is the serialization point that
	// rejects concurrent holds for the same seat at the storage layer.
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		bus_id BIGINT NOT NULL,
		travel_date DATE NOT NULL,
		seat_code VARCHAR(10) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_trip_seat (bus_id, travel_date, seat_code),
		KEY idx_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS counters (
		name VARCHAR(50) PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS agents (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		username VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_agent_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS payment_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		outcome VARCHAR(20) NOT NULL,
		payment_method VARCHAR(50) NOT NULL DEFAULT '',
		payload TEXT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_booking (booking_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}

// EnsureSchema creates all tables used by the service when missing.
func EnsureSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}
