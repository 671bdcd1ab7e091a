package validation

import (
	"fmt"
	"strings"
)

const (
	MinThreads = 1
	MaxThreads = 20
)

// TaskStatuses lists the workflow states the server accepts for a task.
var TaskStatuses = []string{"open", "in_progress", "in_review", "done", "archived"}

// TaskPriorities lists the priorities accepted at submission.
var TaskPriorities = []string{"low", "normal", "high", "urgent"}

// ApprovalStates lists the filterable states of an approval record.
var ApprovalStates = []string{"pending", "approved", "rejected"}

func ValidateThreadCount(threads int) error {
	if threads < MinThreads || threads > MaxThreads {
		return fmt.Errorf("thread count must be between %d and %d, got %d", MinThreads, MaxThreads, threads)
	}
	return nil
}

func ValidateTaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

func ValidateTaskStatus(status string) error {
	return validateOneOf("status", status, TaskStatuses)
}

func ValidatePriority(priority string) error {
	return validateOneOf("priority", priority, TaskPriorities)
}

func ValidateApprovalState(state string) error {
	return validateOneOf("approval state", state, ApprovalStates)
}

func validateOneOf(fieldName, value string, valid []string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %s (must be one of: %s)", fieldName, value, strings.Join(valid, ", "))
}
