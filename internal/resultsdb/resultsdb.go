// Package resultsdb publishes run results to a MySQL database.
package resultsdb

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
)

// Settings is the MySQL connection configuration
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// SettingsFromEnv reads DB_* variables, falling back to local defaults
func SettingsFromEnv(env map[string]string) Settings {
	get := func(key, fallback string) string {
		if v := env[key]; v != "" {
			return v
		}
		return fallback
	}
	return Settings{
		Host:     get("DB_HOST", "127.0.0.1"),
		Port:     get("DB_PORT", "3306"),
		User:     get("DB_USERNAME", "root"),
		Password: env["DB_PASSWORD"],
		Database: get("DB_DATABASE", "e2e_results"),
	}
}

// DSN returns the driver DSN, connected to the results database when withDatabase is set
func (s Settings) DSN(withDatabase bool) string {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Host, s.Port)
	cfg.ParseTime = true
	cfg.MultiStatements = false
	if withDatabase {
		cfg.DBName = s.Database
	}
	return cfg.FormatDSN()
}

var databaseName = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// isValidDatabaseName validates a name that is interpolated into DDL
func isValidDatabaseName(name string) bool {
	if !databaseName.MatchString(name) {
		return false
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if strings.Contains(upper, word) {
			return false
		}
	}
	return true
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		environment VARCHAR(32) NOT NULL,
		total_units INT NOT NULL,
		passed_units INT NOT NULL,
		failed_units INT NOT NULL,
		skipped_units INT NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		workers INT NOT NULL,
		finished_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS units (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		suite VARCHAR(255) NOT NULL,
		title TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		attempts INT NOT NULL,
		duration_seconds DOUBLE NOT NULL,
		error TEXT NULL,
		INDEX idx_units_run (run_id)
	)`,
}

// Publisher writes run results to MySQL
type Publisher struct {
	config *config.Config
	log    logrus.FieldLogger
}

// NewPublisher creates a Publisher. Connection settings are read from the
// config's environment when the database is used.
func NewPublisher(cfg *config.Config, log logrus.FieldLogger) *Publisher {
	return &Publisher{config: cfg, log: log}
}

// Settings returns the connection settings currently in effect
func (p *Publisher) Settings() Settings {
	return SettingsFromEnv(p.config.Env)
}

func (p *Publisher) open(ctx context.Context, withDatabase bool) (*sql.DB, error) {
	db, err := sql.Open("mysql", p.Settings().DSN(withDatabase))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the results database and its tables when missing
func (p *Publisher) EnsureSchema(ctx context.Context) error {
	name := p.Settings().Database
	if !isValidDatabaseName(name) {
		return fmt.Errorf("invalid database name: %s", name)
	}

	server, err := p.open(ctx, false)
	if err != nil {
		return err
	}
	defer server.Close()

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := server.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if !exists {
		if _, err := server.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
			return fmt.Errorf("failed to create database %s: %w", name, err)
		}
		p.log.WithField("database", name).Info("Created results database")
	}

	db, err := p.open(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// Publish inserts a run and its units in one transaction
func (p *Publisher) Publish(ctx context.Context, meta domain.TestResultsMeta, results []domain.SuiteResult) error {
	if meta.RunID == "" {
		return fmt.Errorf("run id is required")
	}

	db, err := p.open(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, environment, total_units, passed_units, failed_units, skipped_units, duration_seconds, workers, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		runRow(meta)...,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO units (run_id, suite, title, status, attempts, duration_seconds, error) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare unit insert: %w", err)
	}
	defer stmt.Close()

	rows := unitRows(meta.RunID, results)
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert unit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.log.WithFields(logrus.Fields{"run": meta.RunID, "units": len(rows)}).Info("Published results")
	return nil
}

func runRow(meta domain.TestResultsMeta) []any {
	finished, err := time.Parse(time.RFC3339, meta.Timestamp)
	if err != nil {
		finished = time.Now()
	}
	return []any{
		meta.RunID,
		meta.Environment,
		meta.TotalUnits,
		meta.PassedUnits,
		meta.FailedUnits,
		meta.SkippedUnits,
		meta.DurationSeconds,
		meta.Workers,
		finished.UTC(),
	}
}

func unitRows(runID string, results []domain.SuiteResult) [][]any {
	var rows [][]any
	for _, r := range results {
		for _, u := range r.Units {
			var errText sql.NullString
			if u.Error != nil {
				errText = sql.NullString{String: u.Error.Error(), Valid: true}
			}
			rows = append(rows, []any{
				runID,
				r.Name,
				u.Title,
				string(u.Status),
				u.Attempts,
				u.Duration.Seconds(),
				errText,
			})
		}
	}
	return rows
}
