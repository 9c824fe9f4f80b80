package ownerid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	assert.NotEqual(t, a, b, "two calls must not collide")

	_, err := uuid.Parse(a)
	assert.NoError(t, err, "owner id must be a valid UUID")
}
