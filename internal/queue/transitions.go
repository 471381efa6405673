package queue

import "turnon/internal/models"

const (
	ActionActivate = "activate"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

var transitionMap = map[string][]string{
	ActionActivate: {models.StatusPending},
	ActionComplete: {models.StatusActive},
	ActionCancel:   {models.StatusPending, models.StatusActive},
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	from := NormalizeStatus(models.Turn{Status: fromStatus})
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
