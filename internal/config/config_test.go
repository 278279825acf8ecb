package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxBorrowLimit)
	assert.Equal(t, 14, cfg.BorrowDays)
	assert.Equal(t, 5.0, cfg.FinePerDay)
	assert.Equal(t, "0 0 * * *", cfg.OverdueCronSpec)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("MAX_BORROW_LIMIT", "5")
	t.Setenv("BORROW_DAYS", "21")
	t.Setenv("FINE_PER_DAY", "2.5")
	t.Setenv("OVERDUE_CRON", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5, cfg.MaxBorrowLimit)
	assert.Equal(t, 21, cfg.BorrowDays)
	assert.Equal(t, 2.5, cfg.FinePerDay)
	assert.Equal(t, "@hourly", cfg.OverdueCronSpec)
}

func TestDSN(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("DB_DSN", "")
		assert.Contains(t, DSN(), "localhost:5432/library")
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://app:pw@db:5432/prod")
		assert.Equal(t, "postgres://app:pw@db:5432/prod", DSN())
	})
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("zero borrow limit", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("MAX_BORROW_LIMIT", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative fine", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("FINE_PER_DAY", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unparsable int falls back to default", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("BORROW_DAYS", "a fortnight")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 14, cfg.BorrowDays)
	})
}
