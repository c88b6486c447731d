package orders

// Order statuses. New orders start at StatusPending; payment confirmation is
// not observed at intake time, so "confirmed" is only reachable through an
// explicit status update.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// statusRank orders the forward-only fulfillment chain.
var statusRank = map[string]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

func ValidStatus(status string) bool {
	if status == StatusCancelled {
		return true
	}
	_, ok := statusRank[status]
	return ok
}

// CanTransition reports whether an order may move from one status to the
// next: strictly forward along the fulfillment chain, with cancellation
// allowed from any non-terminal state. Delivered and cancelled are terminal.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == StatusCancelled || from == StatusDelivered {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusRank[to] == statusRank[from]+1
}

// allowedPredecessors lists the statuses an order may hold immediately
// before moving to the given one. Used as a conditional-update guard so a
// racing update cannot slip an illegal edge through.
func allowedPredecessors(to string) []string {
	froms := make([]string, 0, len(statusRank))
	for from := range statusRank {
		if CanTransition(from, to) {
			froms = append(froms, from)
		}
	}
	return froms
}
