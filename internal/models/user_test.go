package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())

	assert.False(t, Role("").Valid())
	assert.False(t, Role("admin").Valid(), "roles are case sensitive")
	assert.False(t, Role("SuperAdmin").Valid())
}
