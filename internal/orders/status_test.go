package orders

import "testing"

func TestValidStatus(t *testing.T) {
	for _, status := range []string{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled,
	} {
		if !ValidStatus(status) {
			t.Errorf("expected %q to be valid", status)
		}
	}

	for _, status := range []string{"", "Pending", "refunded", "shipped "} {
		if ValidStatus(status) {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}

func TestCanTransitionForwardChain(t *testing.T) {
	chain := []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}

	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", chain[i], chain[i+1])
		}
	}

	// No skipping ahead, no moving backwards.
	if CanTransition(StatusPending, StatusProcessing) {
		t.Error("expected pending -> processing to be rejected")
	}
	if CanTransition(StatusShipped, StatusConfirmed) {
		t.Error("expected shipped -> confirmed to be rejected")
	}
	if CanTransition(StatusDelivered, StatusDelivered) {
		t.Error("expected delivered -> delivered to be rejected")
	}
}

func TestCanTransitionCancellation(t *testing.T) {
	for _, from := range []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		if !CanTransition(from, StatusCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", from)
		}
	}

	// Terminal states stay terminal.
	if CanTransition(StatusDelivered, StatusCancelled) {
		t.Error("expected delivered -> cancelled to be rejected")
	}
	if CanTransition(StatusCancelled, StatusPending) {
		t.Error("expected cancelled -> pending to be rejected")
	}
	if CanTransition(StatusCancelled, StatusCancelled) {
		t.Error("expected cancelled -> cancelled to be rejected")
	}
}

func TestAllowedPredecessors(t *testing.T) {
	froms := allowedPredecessors(StatusConfirmed)
	if len(froms) != 1 || froms[0] != StatusPending {
		t.Errorf("expected confirmed to only follow pending, got %v", froms)
	}

	if len(allowedPredecessors(StatusPending)) != 0 {
		t.Error("expected pending to have no predecessors")
	}

	cancelFroms := allowedPredecessors(StatusCancelled)
	if len(cancelFroms) != 4 {
		t.Errorf("expected 4 cancellable states, got %v", cancelFroms)
	}
}
