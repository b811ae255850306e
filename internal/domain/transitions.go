package domain

// validTransitions is the whole booking state machine. NO_SHOW is reachable
// from any other status and is handled separately below.
var validTransitions = map[BookingStatusType][]BookingStatusType{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another. Everything outside the table is rejected, including no-op
// transitions (CONFIRMED -> CONFIRMED).
func CanTransition(from, to BookingStatusType) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if to == BookingStatusNoShow {
		return from != BookingStatusNoShow
	}
	for _, allowed := range validTransitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}
