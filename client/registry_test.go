package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Continue(t *testing.T) {
	r := Registry{}
	r.Initialize()

	// first visit counts
	assert.True(t, r.Continue("10.0.0.1", "book-1"))

	// page refresh does not
	assert.False(t, r.Continue("10.0.0.1", "book-1"))

	// another profile from the same client counts again
	assert.True(t, r.Continue("10.0.0.1", "book-2"))

	// and so does another client on the same profile
	assert.True(t, r.Continue("10.0.0.2", "book-2"))
}

func TestRegistry_CountAndFlush(t *testing.T) {
	r := Registry{}
	r.Initialize()

	r.Continue("10.0.0.1", "book-1")
	r.Continue("10.0.0.2", "book-1")
	assert.Equal(t, 2, r.Count())

	// under the size threshold nothing is evicted
	r.Flush()
	assert.Equal(t, 2, r.Count())
}

func TestRegistry_Dump(t *testing.T) {
	r := Registry{}
	r.Initialize()

	r.Continue("10.0.0.1", "book-1")
	r.Continue("10.0.0.2", "book-2")
	r.Continue("10.0.0.3", "book-3")

	assert.Len(t, r.Dump(2), 2)
	assert.Len(t, r.Dump(50), 3)
}
