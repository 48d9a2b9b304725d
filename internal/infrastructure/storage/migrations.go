package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "ledger_entities",
		Up:      migration001LedgerEntities,
	},
	{
		Version: 2,
		Name:    "add_matches_table",
		Up:      migration002AddMatchesTable,
	},
	{
		Version: 3,
		Name:    "add_sessions_table",
		Up:      migration003AddSessionsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		// Run migration in transaction
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		// Execute migration
		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		// Record migration
		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		// Commit
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

// migration001LedgerEntities creates the expenses and transactions tables
func migration001LedgerEntities(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			currency TEXT NOT NULL DEFAULT 'CHF',
			date DATE NOT NULL,
			merchant TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			matched_transaction_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL,
			currency TEXT NOT NULL DEFAULT 'CHF',
			booking_date DATE NOT NULL,
			value_date DATE,
			counterparty TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			reference TEXT NOT NULL DEFAULT '',
			matched_expense_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for the candidate queries
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date
		 ON expenses(user_id, date)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_booking
		 ON transactions(user_id, booking_date)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddMatchesTable creates the matches table
func migration002AddMatchesTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			expense_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			match_type TEXT NOT NULL,
			strategy TEXT NOT NULL,
			confidence REAL NOT NULL,
			breakdown_json TEXT NOT NULL DEFAULT '{}',
			auto_matched BOOLEAN NOT NULL DEFAULT 0,
			user_confirmed BOOLEAN NOT NULL DEFAULT 0,
			user_rejected BOOLEAN NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (expense_id) REFERENCES expenses(id),
			FOREIGN KEY (transaction_id) REFERENCES transactions(id),
			UNIQUE(expense_id, transaction_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_matches_expense
		 ON matches(expense_id)`,

		`CREATE INDEX IF NOT EXISTS idx_matches_transaction
		 ON matches(transaction_id)`,

		`CREATE INDEX IF NOT EXISTS idx_matches_confidence
		 ON matches(confidence)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// migration003AddSessionsTable creates the sessions table
func migration003AddSessionsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			strategy TEXT NOT NULL,
			total_expenses INTEGER NOT NULL DEFAULT 0,
			total_transactions INTEGER NOT NULL DEFAULT 0,
			exact_matches INTEGER NOT NULL DEFAULT 0,
			probable_matches INTEGER NOT NULL DEFAULT 0,
			needs_review INTEGER NOT NULL DEFAULT 0,
			auto_accepted INTEGER NOT NULL DEFAULT 0,
			unmatched_expenses INTEGER NOT NULL DEFAULT 0,
			unmatched_transactions INTEGER NOT NULL DEFAULT 0,
			failed_to_score INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_user_created
		 ON sessions(user_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
