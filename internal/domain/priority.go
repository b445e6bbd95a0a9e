package domain

// ClassifyProximity maps distance-to-service to a priority tier. A recipient
// within two positions of being served gets the critical tier (continuous
// sound/vibration on the client); everyone else in the alert window gets
// high. PriorityNormal is reserved for records minted outside this path,
// e.g. general announcements.
func ClassifyProximity(diff int) Priority {
	if diff <= 2 {
		return PriorityCritical
	}
	return PriorityHigh
}
