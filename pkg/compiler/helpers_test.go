package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreludeForEmptyIsEmptyString(t *testing.T) {
	assert.Equal(t, "", preludeFor(nil))
}

func TestPreludeForIncludesOnlyRequestedHelper(t *testing.T) {
	out := preludeFor([]string{"__hql_throw"})
	assert.Contains(t, out, "function __hql_throw(")
	assert.NotContains(t, out, "__hql_get")
}

func TestPreludeForPullsInTransitiveDependency(t *testing.T) {
	out := preludeFor([]string{"__hql_getNumeric"})
	assert.Contains(t, out, "function __hql_getNumeric(")
	assert.Contains(t, out, "function __hql_get(")
	// dependency must be defined first
	assert.Less(t, strings.Index(out, "function __hql_get("), strings.Index(out, "function __hql_getNumeric("))
}

func TestPreludeForIsOrderDeterministic(t *testing.T) {
	a := preludeFor([]string{"__hql_throw", "__hql_get", "__hql_deepFreeze"})
	b := preludeFor([]string{"__hql_deepFreeze", "__hql_get", "__hql_throw"})
	assert.Equal(t, a, b)
}
