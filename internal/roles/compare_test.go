package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnk-io/lnk-console/internal/catalog"
)

func TestMatrixHasPermission(t *testing.T) {
	matrix := NewMatrix([]Role{
		{Name: "A", Permissions: []string{"links:view"}},
		{Name: "B", Permissions: []string{"links:view", "links:create"}},
	})

	assert.True(t, matrix.HasPermission("A", "links:view"))
	assert.False(t, matrix.HasPermission("A", "links:create"))
	assert.True(t, matrix.HasPermission("B", "links:create"))

	// Unknown role renders as "no", never an error.
	assert.False(t, matrix.HasPermission("C", "links:view"))
}

func TestMatrixPreservesOrderAndSkipsDuplicates(t *testing.T) {
	matrix := NewMatrix([]Role{
		{Name: "Owner"},
		{Name: "Member"},
		{Name: "Owner", Permissions: []string{"links:view"}},
	})
	assert.Equal(t, []string{"Owner", "Member"}, matrix.RoleNames())
	assert.False(t, matrix.HasPermission("Owner", "links:view"), "first occurrence wins")
}

func TestComparisonFollowsCatalogOrder(t *testing.T) {
	cat := catalog.Default()
	matrix := NewMatrix([]Role{
		{Name: "Viewer", Permissions: []string{"links:view", "qr:view"}},
	})

	groups := matrix.Comparison(cat)
	require.Equal(t, len(cat.GroupsInOrder()), len(groups))
	assert.Equal(t, "links", groups[0].Key)

	first := groups[0].Rows[0]
	assert.Equal(t, "links:view", first.Key)
	assert.Equal(t, "View links", first.Label)
	assert.True(t, first.Roles["Viewer"])
}
