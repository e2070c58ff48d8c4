package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	"weatherbot/internal/config"
	"weatherbot/internal/lib/sl"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySql stores the quota call log in a MySQL table, for deployments
// that already run a database and want the budget shared between
// replicas. Enabled via sql.enabled; the JSON file store is the
// default otherwise.
type MySql struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLClient(conf *config.Config, log *slog.Logger) (*MySql, error) {
	if !conf.SQL.Enabled {
		return nil, fmt.Errorf("SQL client is disabled in configuration")
	}
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.SQL.UserName, conf.SQL.Password, conf.SQL.HostName, conf.SQL.Port, conf.SQL.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try ping three times with 30 seconds interval; wait for database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &MySql{
		db:  db,
		log: log.With(sl.Module("mysql")),
	}

	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS quota_log (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		called_at DATETIME(3) NOT NULL,
		INDEX idx_called_at (called_at)
	)`); err != nil {
		return nil, fmt.Errorf("create quota_log table: %w", err)
	}

	return sdb, nil
}

func (s *MySql) Close() {
	_ = s.db.Close()
}

// Stats returns database info only if there are connections inUse
func (s *MySql) Stats() string {
	stats := s.db.Stats()
	if stats.InUse > 0 {
		return fmt.Sprintf("open: %d, inuse: %d, idle: %d",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle)
	}
	return "idle"
}

// Load returns the call timestamps still inside the rolling window.
// Older rows are dropped in the same statement, so the table never
// grows past one window's worth of calls.
func (s *MySql) Load() ([]time.Time, error) {
	if _, err := s.db.Exec(
		`DELETE FROM quota_log WHERE called_at < ?`,
		time.Now().UTC().Add(-24*time.Hour),
	); err != nil {
		return nil, fmt.Errorf("prune quota_log: %w", err)
	}

	rows, err := s.db.Query(`SELECT called_at FROM quota_log ORDER BY called_at`)
	if err != nil {
		return nil, fmt.Errorf("select quota_log: %w", err)
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err = rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan quota_log row: %w", err)
		}
		timestamps = append(timestamps, ts.UTC())
	}
	return timestamps, rows.Err()
}

// Save replaces the stored log with the given timestamps inside one
// transaction.
func (s *MySql) Save(timestamps []time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin quota_log save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`DELETE FROM quota_log`); err != nil {
		return fmt.Errorf("clear quota_log: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO quota_log (called_at) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare quota_log insert: %w", err)
	}
	defer stmt.Close()

	for _, ts := range timestamps {
		if _, err = stmt.Exec(ts.UTC()); err != nil {
			return fmt.Errorf("insert quota_log row: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit quota_log save: %w", err)
	}
	return nil
}
