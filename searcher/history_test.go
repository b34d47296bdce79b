package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	t.Run("root history", func(t *testing.T) {
		var h History[string, int]

		require.True(t, h.IsRoot(), "Zero value should be the root")
		require.Equal(t, 0, h.Len())
		require.Equal(t, "<root>", h.String())
		_, ok := h.Last()
		require.False(t, ok, "Root has no last step")
		_, ok = h.Parent()
		require.False(t, ok, "Root has no parent")
	})

	t.Run("extending leaves the parent untouched", func(t *testing.T) {
		parent := NewHistory(Step[string, int]{Action: "a", Observation: 1})
		left := parent.Extend("b", 2)
		right := parent.Extend("c", 3)

		require.Equal(t, 1, parent.Len(), "Parent should keep its length")
		require.Equal(t, "a/1 b/2", left.String())
		require.Equal(t, "a/1 c/3", right.String(), "Sibling extensions should not share storage")

		back, ok := left.Parent()
		require.True(t, ok)
		require.True(t, back.Equal(parent), "Parent of an extension should equal the original")
	})

	t.Run("structural equality", func(t *testing.T) {
		a := History[string, int]{}.Extend("ab", 1).Extend("c", 2)
		b := History[string, int]{}.Extend("a", 1).Extend("bc", 2)
		c := NewHistory(Step[string, int]{"ab", 1}, Step[string, int]{"c", 2})

		require.False(t, a.Equal(b), "Token boundaries should matter")
		require.True(t, a.Equal(c))
		require.True(t, a.HasPrefix(History[string, int]{}.Extend("ab", 1)))
		require.False(t, a.HasPrefix(b))
		require.False(t, History[string, int]{}.HasPrefix(a), "Shorter history cannot have a longer prefix")
	})

	t.Run("steps are copied", func(t *testing.T) {
		h := History[string, int]{}.Extend("a", 1)
		steps := h.Steps()
		steps[0].Action = "z"

		last, _ := h.Last()
		require.Equal(t, "a", last.Action, "Mutating Steps() should not affect the history")
	})
}
