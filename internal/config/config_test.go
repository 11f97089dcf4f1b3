package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "root:root@tcp(localhost:3306)/storefront?parseTime=true", cfg.MySQLDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/shop?parseTime=true")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "user:pass@tcp(db:3306)/shop?parseTime=true", cfg.MySQLDSN)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}
