package orders

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^FP-\d{13,}-[0-9A-F]{8}$`)

func TestNewOrderIDFormat(t *testing.T) {
	id := NewOrderID()
	assert.Regexp(t, orderIDPattern, id)
}

func TestNewOrderIDUniqueUnderBurst(t *testing.T) {
	const n = 2000

	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := NewOrderID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n, "expected no collisions across a burst of concurrent ids")
}
