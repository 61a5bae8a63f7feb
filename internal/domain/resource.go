package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection tells whether a resource left the store for a task or came back.
type MovementDirection string

const (
	MovementAssigned MovementDirection = "ASSIGNED"
	MovementReturned MovementDirection = "RETURNED"
)

// IsValid checks if the direction is one of the allowed values.
func (d MovementDirection) IsValid() bool {
	return d == MovementAssigned || d == MovementReturned
}

// ResourceMovement is one resource attached to or returned from a task.
type ResourceMovement struct {
	TaskID       string
	ResourceID   string
	ResourceName string
	ResourceType string
	Direction    MovementDirection
	Quantity     decimal.Decimal
	OccurredAt   time.Time
}
