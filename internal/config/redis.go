package config

// This file defines a Redis client constructor. Redis backs the
// distributed rate limiter on the auth endpoints and the HTTP response
// cache. If the connection cannot be established at startup the function
// returns nil and callers degrade gracefully by disabling both features.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables:
//
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (takes precedence when set together)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
//	REDIS_TLS_SKIP_VERIFY – skip certificate verification (default false)
//
// The returned client may be nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: redisTLS(),
	})
	// Ping with a short timeout; nil on failure so callers can fall back.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// redisTLS builds the TLS settings from the environment. Certificate
// verification stays on unless REDIS_TLS_SKIP_VERIFY explicitly turns it
// off for setups with self-signed certificates.
func redisTLS() *tls.Config {
	if !envBool("REDIS_TLS", false) {
		return nil
	}
	conf := &tls.Config{MinVersion: tls.VersionTLS12}
	if envBool("REDIS_TLS_SKIP_VERIFY", false) {
		conf.InsecureSkipVerify = true
	}
	return conf
}
