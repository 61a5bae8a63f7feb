package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/farmops/internal/domain"
)

func TestMovementDirection_IsValid(t *testing.T) {
	assert.True(t, domain.MovementAssigned.IsValid())
	assert.True(t, domain.MovementReturned.IsValid())
	assert.False(t, domain.MovementDirection("LOST").IsValid())
	assert.False(t, domain.MovementDirection("").IsValid())
}
