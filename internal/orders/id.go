package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderID builds a customer-facing order reference: a millisecond
// timestamp for rough sortability plus a UUIDv4 fragment, which keeps the
// random component crypto-strength so bursts of concurrent checkouts cannot
// collide.
func NewOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("FP-%d-%s", time.Now().UnixMilli(), suffix)
}
