package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := options(&config.RedisConfig{
		Host:      "cache",
		Port:      6380,
		Password:  "secret",
		DB:        2,
		PoolSize:  30,
		OpTimeout: 150 * time.Millisecond,
	})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 30, opts.PoolSize)
	assert.Equal(t, 150*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 150*time.Millisecond, opts.WriteTimeout)
	assert.Equal(t, -1, opts.MaxRetries)

	defaults := options(&config.RedisConfig{Host: "localhost", Port: 6379})
	assert.Zero(t, defaults.PoolSize)
	assert.Zero(t, defaults.ReadTimeout)
}
