package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashUUID_DeterministicForEqualInput(t *testing.T) {
	a := HashUUID(struct{ X int }{X: 1})
	b := HashUUID(struct{ X int }{X: 1})
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestHashUUID_DiffersForDifferentInput(t *testing.T) {
	a := HashUUID(struct{ X int }{X: 1})
	b := HashUUID(struct{ X int }{X: 2})
	assert.NotEqual(t, a, b)
}
