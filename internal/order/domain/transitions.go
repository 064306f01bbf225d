package domain

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:     {StatusProcessing, StatusReadyToShip, StatusCancelled},
	StatusProcessing:  {StatusReadyToShip, StatusCancelled},
	StatusReadyToShip: {StatusShipped},
	StatusShipped:     {StatusDelivered},
}

// CanTransition reports whether from may move to target in one step.
func CanTransition(from, target OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status OrderStatus) bool {
	return len(transitions[status]) == 0
}

// ValidStatus reports whether the value is a known order status.
func ValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusReadyToShip, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
