package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/shared"
)

// maxNumberAttempts bounds the collision retry loop for number generation
const maxNumberAttempts = 10

// GenerateNumber produces a candidate order number of the form
// PO-YYYYMMDD-XXXXXXXX with a random suffix
func GenerateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PO-%s-%s", now.Format("20060102"), suffix)
}

// NumberChecker is the subset of the PO repository needed for
// collision-checked number generation
type NumberChecker interface {
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// GenerateUniqueNumber generates an order number, retrying on collision
// up to the bounded attempt count before failing
func GenerateUniqueNumber(ctx context.Context, checker NumberChecker, now time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := GenerateNumber(now)
		exists, err := checker.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", shared.NewConcurrencyError(
		fmt.Sprintf("could not generate a unique order number after %d attempts", maxNumberAttempts))
}
