package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Unique([]string{"b", "a", "b", "c", "a"}))
	assert.Empty(t, Unique([]int(nil)))
}

func TestToggle(t *testing.T) {
	set, member := Toggle([]string{"a"}, "b")
	assert.True(t, member)
	assert.Equal(t, []string{"a", "b"}, set)

	set, member = Toggle(set, "a")
	assert.False(t, member)
	assert.Equal(t, []string{"b"}, set)
}

func TestToggleDoesNotAliasInput(t *testing.T) {
	orig := []string{"a", "b", "c"}
	out, _ := Toggle(orig, "a")
	assert.Equal(t, []string{"b", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, orig)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi", SanitizePlain("  <b>hi</b> "))
	assert.Equal(t, "<b>hi</b>", Sanitize("<b>hi</b><script>x()</script>"))
}
