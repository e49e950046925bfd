package resultsdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
)

func TestSettingsFromEnv(t *testing.T) {
	s := SettingsFromEnv(map[string]string{})
	assert.Equal(t, Settings{Host: "127.0.0.1", Port: "3306", User: "root", Database: "e2e_results"}, s)

	s = SettingsFromEnv(map[string]string{
		"DB_HOST":     "db",
		"DB_PORT":     "3307",
		"DB_USERNAME": "e2e",
		"DB_PASSWORD": "secret",
		"DB_DATABASE": "nightly",
	})
	assert.Equal(t, Settings{Host: "db", Port: "3307", User: "e2e", Password: "secret", Database: "nightly"}, s)
}

func TestSettings_DSN(t *testing.T) {
	s := Settings{Host: "db", Port: "3307", User: "e2e", Password: "p@ss", Database: "nightly"}

	cfg, err := mysql.ParseDSN(s.DSN(true))
	require.NoError(t, err)
	assert.Equal(t, "e2e", cfg.User)
	assert.Equal(t, "p@ss", cfg.Passwd)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Equal(t, "nightly", cfg.DBName)
	assert.True(t, cfg.ParseTime)

	cfg, err = mysql.ParseDSN(s.DSN(false))
	require.NoError(t, err)
	assert.Empty(t, cfg.DBName)
}

func TestIsValidDatabaseName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"e2e_results", true},
		{"Results2", true},
		{"", false},
		{"bad-name", false},
		{"x`; DROP TABLE runs", false},
		{"dropzone", false},
		{string(make([]byte, 65)), false},
	}
	for _, tt := range tests {
		if got := isValidDatabaseName(tt.name); got != tt.valid {
			t.Errorf("isValidDatabaseName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestRows(t *testing.T) {
	meta := domain.TestResultsMeta{RunID: "r1", Environment: "stg", TotalUnits: 2, PassedUnits: 1, FailedUnits: 1, Timestamp: "2026-10-19T12:00:00Z"}
	row := runRow(meta)
	require.Len(t, row, 9)
	assert.Equal(t, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), row[8])

	rows := unitRows("r1", []domain.SuiteResult{{
		Name: "login",
		Units: []domain.UnitResult{
			{Title: "a", Status: domain.StatusPassed, Attempts: 1, Duration: 2 * time.Second},
			{Title: "b", Status: domain.StatusFailed, Attempts: 2, Error: errors.New("boom")},
		},
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"r1", "login", "a", "passed", 1, 2.0, sql.NullString{}}, rows[0])
	assert.Equal(t, sql.NullString{String: "boom", Valid: true}, rows[1][6])
}

func TestPublisher_SettingsFollowConfig(t *testing.T) {
	cfg := config.New()
	log, _ := logtest.NewNullLogger()
	p := NewPublisher(cfg, log)
	assert.Equal(t, "127.0.0.1", p.Settings().Host)

	cfg.Env = map[string]string{"DB_HOST": "results", "DB_DATABASE": "bad-name"}
	assert.Equal(t, "results", p.Settings().Host)

	err := p.EnsureSchema(context.Background())
	assert.EqualError(t, err, "invalid database name: bad-name")

	err = p.Publish(context.Background(), domain.TestResultsMeta{}, nil)
	assert.EqualError(t, err, "run id is required")
}
