package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestBuildTree(t *testing.T) {
	cats := []Category{
		{ID: "laptops", Name: "Laptops"},
		{ID: "gaming", ParentID: ptr("laptops"), Name: "Gaming"},
		{ID: "office", ParentID: ptr("laptops"), Name: "Office"},
		{ID: "rtx", ParentID: ptr("gaming"), Name: "RTX"},
		{ID: "orphan", ParentID: ptr("hidden"), Name: "Orphan"},
		{ID: "orphan-kid", ParentID: ptr("orphan"), Name: "Orphan Kid"},
		{ID: "desks", Name: "Desks"},
	}

	tree := BuildTree(cats)
	require.Len(t, tree, 2, "children of a hidden parent are not promoted")
	assert.Equal(t, "laptops", tree[0].ID)
	assert.Equal(t, "desks", tree[1].ID)

	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "gaming", tree[0].Children[0].ID)
	assert.Equal(t, "rtx", tree[0].Children[0].Children[0].ID)
	assert.Empty(t, tree[0].Children[1].Children)
}
