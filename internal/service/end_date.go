package service

import (
	"time"

	"github.com/mtlprog/farmops/internal/domain"
)

// ResolveEndDate returns the end date a task should carry after moving to
// newStatus. Terminal statuses are stamped with now when no end date exists,
// so the outcome falls inside report windows. Other statuses keep current.
func ResolveEndDate(current *time.Time, newStatus domain.TaskStatus, now time.Time) *time.Time {
	if current != nil || !newStatus.IsTerminal() {
		return current
	}
	end := now.UTC()
	return &end
}
