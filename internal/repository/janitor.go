package repository

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// Janitor removes expired token rows on a fixed interval. Expiry-based
// deletion is a storage concern, not business logic: redemption never
// depends on it, since every redeem query checks expires_at itself. The
// janitor only keeps the three token tables from growing without bound.
type Janitor struct {
	DB       *sql.DB
	Interval time.Duration
}

// NewJanitor builds a janitor with a default hourly sweep.
func NewJanitor(db *sql.DB) *Janitor {
	return &Janitor{DB: db, Interval: time.Hour}
}

// Run sweeps until the context is cancelled. Intended to be started as a
// goroutine from main; errors are logged and the loop continues.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	// Revoked refresh tokens are kept until expiry for audit; everything
	// past expires_at goes.
	for _, table := range []string{"refresh_tokens", "email_verification_tokens", "password_reset_tokens"} {
		res, err := j.DB.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE expires_at <= UTC_TIMESTAMP()")
		if err != nil {
			log.Printf("janitor: sweep %s failed: %v", table, err)
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Printf("janitor: removed %d expired rows from %s", n, table)
		}
	}
}
