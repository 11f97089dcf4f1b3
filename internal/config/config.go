package config

import "os"

const (
	ServiceName    = "storefront"
	ServiceVersion = "0.1.0"
)

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string
}

func Load() *Config {
	return &Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:  getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
