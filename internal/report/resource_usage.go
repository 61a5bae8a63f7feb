package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/farmops/internal/domain"
)

// ResourceUsageStatus is the only task outcome whose resource movements are
// accounted. TERMINATED tasks count toward efficiency but not toward usage.
const ResourceUsageStatus = domain.TaskStatusAccepted

// ResourceUsageSummary is the net usage of one resource in a window, compared
// with the previous window of equal length.
type ResourceUsageSummary struct {
	ResourceID           string
	ResourceName         string
	ResourceType         string
	Gained               decimal.Decimal
	Consumed             decimal.Decimal
	Net                  decimal.Decimal
	TasksCount           int
	AverageUsage         decimal.Decimal
	LastUsedAt           time.Time
	PreviousNet          decimal.Decimal
	PreviousAverageUsage decimal.Decimal
}

// usageTotals accumulates the movements of one resource.
type usageTotals struct {
	name       string
	kind       string
	gained     decimal.Decimal
	consumed   decimal.Decimal
	tasks      map[string]struct{}
	lastUsedAt time.Time
}

func (t *usageTotals) add(m domain.ResourceMovement) {
	switch m.Direction {
	case domain.MovementReturned:
		t.gained = t.gained.Add(m.Quantity)
	case domain.MovementAssigned:
		t.consumed = t.consumed.Add(m.Quantity)
	}
	t.tasks[m.TaskID] = struct{}{}
	if m.OccurredAt.After(t.lastUsedAt) {
		t.lastUsedAt = m.OccurredAt
	}
}

func (t *usageTotals) net() decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return t.gained.Sub(t.consumed)
}

func (t *usageTotals) taskCount() int {
	if t == nil {
		return 0
	}
	return len(t.tasks)
}

func (t *usageTotals) average() decimal.Decimal {
	n := t.taskCount()
	if n == 0 {
		return decimal.Zero
	}
	return t.net().Div(decimal.NewFromInt(int64(n)))
}

func groupByResource(movements []domain.ResourceMovement) map[string]*usageTotals {
	groups := make(map[string]*usageTotals)
	for _, m := range movements {
		g, ok := groups[m.ResourceID]
		if !ok {
			g = &usageTotals{
				name:     m.ResourceName,
				kind:     m.ResourceType,
				gained:   decimal.Zero,
				consumed: decimal.Zero,
				tasks:    make(map[string]struct{}),
			}
			groups[m.ResourceID] = g
		}
		g.add(m)
	}
	return groups
}

// AggregateResourceUsage builds one summary per resource present in current,
// ordered by resource name then id. Resources seen only in previous are not emitted.
func AggregateResourceUsage(current, previous []domain.ResourceMovement) []ResourceUsageSummary {
	currentGroups := groupByResource(current)
	previousGroups := groupByResource(previous)

	out := make([]ResourceUsageSummary, 0, len(currentGroups))
	for id, g := range currentGroups {
		prev := previousGroups[id]
		out = append(out, ResourceUsageSummary{
			ResourceID:           id,
			ResourceName:         g.name,
			ResourceType:         g.kind,
			Gained:               g.gained,
			Consumed:             g.consumed,
			Net:                  g.net(),
			TasksCount:           g.taskCount(),
			AverageUsage:         g.average(),
			LastUsedAt:           g.lastUsedAt,
			PreviousNet:          prev.net(),
			PreviousAverageUsage: prev.average(),
		})
	}

	slices.SortFunc(out, func(a, b ResourceUsageSummary) int {
		if c := cmp.Compare(a.ResourceName, b.ResourceName); c != 0 {
			return c
		}
		return cmp.Compare(a.ResourceID, b.ResourceID)
	})
	return out
}
