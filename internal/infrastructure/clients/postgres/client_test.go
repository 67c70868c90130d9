package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

func TestConfigurePool(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	configurePool(db, &config.DatabaseConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    40,
		ConnMaxLifetime: time.Minute,
	})
	assert.Equal(t, 10, db.Stats().MaxOpenConnections)

	configurePool(db, &config.DatabaseConfig{})
	assert.Equal(t, 10, db.Stats().MaxOpenConnections, "zero values keep the current limits")
}
