package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartExpiryCleaner sweeps expired remember tokens and idle sessions with interval.
// Touch and the SQL expiry predicate stay authoritative; the sweep only
// keeps abandoned rows from accumulating.
func StartExpiryCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	sessionTimeout time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM remember_tokens
                     WHERE expires_at <= now()
                `)
				if err != nil {
					log.Error("failed to clean expired remember tokens", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired remember tokens", zap.Int64("removed", rows))
				}

				cutoff := time.Now().Add(-sessionTimeout)
				res, err = db.ExecContext(ctx, `
                    DELETE FROM sessions
                     WHERE last_activity < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean idle sessions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned idle sessions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
