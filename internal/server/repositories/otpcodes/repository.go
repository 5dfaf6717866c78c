// Package otpcodes declares the repository contract for one-time codes.
// Codes are stored as SHA-256 digests; consumption is a single conditional
// update so check-expiry, check-match, and mark-consumed cannot race.
package otpcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations for issuing and consuming one-time codes.
type Repository interface {
	// Create inserts a new code row. Older live codes for the same
	// owner/purpose are left untouched; multiple valid codes may coexist.
	Create(ctx context.Context, code *models.OTPCode) error

	// Consume atomically marks the matching live, unexpired code as
	// consumed. It returns true when exactly one row was flipped; false
	// uniformly covers wrong code, expired, and already consumed.
	Consume(ctx context.Context, userID, purpose, codeHash string, now time.Time) (bool, error)
}
