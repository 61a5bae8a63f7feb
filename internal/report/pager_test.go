package report_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/farmops/internal/report"
)

func TestPaginate_Boundaries(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []struct {
		index int
		want  []int
	}{
		{0, []int{1, 2, 3}},
		{1, []int{4, 5, 6}},
		{2, []int{7}},
		{3, []int{}},
	}

	for _, tc := range cases {
		page := report.Paginate(items, report.PageRequest{Index: tc.index, Size: 3})

		assert.Equal(t, tc.want, page.Content, "page %d", tc.index)
		assert.Equal(t, 7, page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, tc.index, page.PageIndex)
		assert.Equal(t, 3, page.PageSize)
	}
}

func TestPaginate_InvalidRequestNeverFails(t *testing.T) {
	items := []string{"a", "b"}

	negative := report.Paginate(items, report.PageRequest{Index: -1, Size: 10})
	assert.Empty(t, negative.Content)
	assert.NotNil(t, negative.Content)
	assert.Equal(t, 2, negative.TotalElements)
	assert.Equal(t, 1, negative.TotalPages)

	zeroSize := report.Paginate(items, report.PageRequest{Index: 0, Size: 0})
	assert.Empty(t, zeroSize.Content)
	assert.Equal(t, 2, zeroSize.TotalElements)
	assert.Equal(t, 0, zeroSize.TotalPages)
}

func TestPaginate_HugeIndexOrSize(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	cases := []report.PageRequest{
		{Index: math.MaxInt64/100 + 1, Size: 100},
		{Index: 1 << 62, Size: 4},
		{Index: math.MaxInt64, Size: math.MaxInt64},
	}

	for _, req := range cases {
		var page report.Page[int]
		assert.NotPanics(t, func() { page = report.Paginate(items, req) }, "index %d size %d", req.Index, req.Size)
		assert.Equal(t, []int{}, page.Content)
		assert.Equal(t, 7, page.TotalElements)
	}

	last := report.Paginate(items, report.PageRequest{Index: 0, Size: math.MaxInt64})
	assert.Equal(t, items, last.Content)
	assert.Equal(t, 1, last.TotalPages)
}

func TestPaginate_EmptyInput(t *testing.T) {
	page := report.Paginate([]int(nil), report.PageRequest{Index: 0, Size: 5})

	assert.Equal(t, []int{}, page.Content)
	assert.Equal(t, 0, page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
}

func TestPaginate_ContentIsCopied(t *testing.T) {
	items := []int{1, 2, 3}

	page := report.Paginate(items, report.PageRequest{Index: 0, Size: 2})
	page.Content[0] = 100

	assert.Equal(t, 1, items[0])
}
