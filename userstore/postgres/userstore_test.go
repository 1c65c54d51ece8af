package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserStore_RequiresLocation(t *testing.T) {
	assert.PanicsWithValue(t, "missing location for postgres userstore", func() {
		NewUserStore()
	})
}
