package discuss_test

import (
	"testing"

	"github.com/harupress/harupress/discuss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	id       string
	parentID *string
	children []*node
}

func buildNodes(items []*node) []*node {
	return discuss.BuildHierarchy(
		items,
		func(n *node) string { return n.id },
		func(n *node) *string { return n.parentID },
		func(parent, child *node) { parent.children = append(parent.children, child) },
	)
}

func ptr[T any](v T) *T {
	return &v
}

func TestBuildHierarchy(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields no roots", func(t *testing.T) {
		t.Parallel()

		roots := buildNodes(nil)
		assert.Empty(t, roots)
	})

	t.Run("replies nest under their parents", func(t *testing.T) {
		t.Parallel()

		items := []*node{
			{id: "a"},
			{id: "b"},
			{id: "a1", parentID: ptr("a")},
			{id: "b1", parentID: ptr("b")},
			{id: "a2", parentID: ptr("a")},
		}

		roots := buildNodes(items)

		require.Len(t, roots, 2)
		assert.Equal(t, "a", roots[0].id)
		assert.Equal(t, "b", roots[1].id)

		require.Len(t, roots[0].children, 2)
		assert.Equal(t, "a1", roots[0].children[0].id)
		assert.Equal(t, "a2", roots[0].children[1].id)

		require.Len(t, roots[1].children, 1)
		assert.Equal(t, "b1", roots[1].children[0].id)
	})

	t.Run("orphan becomes a root instead of being dropped", func(t *testing.T) {
		t.Parallel()

		items := []*node{
			{id: "a"},
			{id: "x1", parentID: ptr("missing")},
		}

		roots := buildNodes(items)

		require.Len(t, roots, 2)
		assert.Equal(t, "x1", roots[1].id)
	})

	t.Run("every item appears exactly once", func(t *testing.T) {
		t.Parallel()

		items := []*node{
			{id: "a"},
			{id: "a1", parentID: ptr("a")},
			{id: "b"},
			{id: "orphan", parentID: ptr("gone")},
		}

		roots := buildNodes(items)

		total := 0

		var walk func(nodes []*node)
		walk = func(nodes []*node) {
			for _, n := range nodes {
				total++

				walk(n.children)
			}
		}
		walk(roots)

		assert.Equal(t, len(items), total)
	})

	t.Run("input order is preserved within a level", func(t *testing.T) {
		t.Parallel()

		items := []*node{
			{id: "p"},
			{id: "r3", parentID: ptr("p")},
			{id: "r1", parentID: ptr("p")},
			{id: "r2", parentID: ptr("p")},
		}

		roots := buildNodes(items)

		require.Len(t, roots, 1)
		require.Len(t, roots[0].children, 3)
		assert.Equal(t, "r3", roots[0].children[0].id)
		assert.Equal(t, "r1", roots[0].children[1].id)
		assert.Equal(t, "r2", roots[0].children[2].id)
	})
}
