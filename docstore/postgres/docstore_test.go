package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocStore_RequiresLocation(t *testing.T) {
	assert.PanicsWithValue(t, "missing location for postgres docstore", func() {
		NewDocStore()
	})
}
