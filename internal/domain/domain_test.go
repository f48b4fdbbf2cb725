package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPortfolioItemValidate(t *testing.T) {
	valid := PortfolioItem{Title: "X", Description: "Y", CreatorID: 7, CategoryID: 3}
	require.NoError(t, valid.Validate())

	long := valid
	long.Title = strings.Repeat("t", 1000)
	long.Link = strPtr("https://example.com/" + strings.Repeat("l", 3000))
	require.NoError(t, long.Validate())

	missing := PortfolioItem{Description: "Y", CreatorID: 7}
	err := missing.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "Title(required)")
	assert.Contains(t, verr.Error(), "CategoryID(gt)")
	assert.Equal(t, "item_invalid", verr.Code())
}

func TestPortfolioItemWebLink(t *testing.T) {
	cases := []struct {
		link *string
		want bool
	}{
		{nil, false},
		{strPtr("github.com/x"), false},
		{strPtr("http://example.com"), true},
		{strPtr(" https://example.com "), true},
	}
	for _, tc := range cases {
		_, ok := PortfolioItem{Link: tc.link}.WebLink()
		assert.Equal(t, tc.want, ok)
	}
}

func TestFilters(t *testing.T) {
	assert.Equal(t, Filter{Approved: true, CategoryID: 4}, ApprovedIn(4))
	assert.Equal(t, Filter{Approved: false, CategoryID: AllCategories}, Pending())
}
