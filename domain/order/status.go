package order

import (
	"strings"

	"workshop/domain/shared"
)

// Status is a closed enumeration with unrestricted assignment:
// any value may replace any other and no value triggers side effects.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// AllStatuses lists the enumeration in display order.
var AllStatuses = []Status{StatusProcessing, StatusInProgress, StatusCompleted}

var statusAliases = map[string]Status{
	"processing":  StatusProcessing,
	"inprogress":  StatusInProgress,
	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"completed":   StatusCompleted,
	"обработка":   StatusProcessing,
	"в работе":    StatusInProgress,
	"выполнен":    StatusCompleted,
}

// ParseStatus accepts the canonical names case-insensitively, plus the legacy labels.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", shared.NewValidationError("order", "status",
		"must be one of Processing, InProgress, Completed, got "+s)
}

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }
