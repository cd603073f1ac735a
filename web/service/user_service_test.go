package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupEnv(t)

	user, err := env.users.Register("Alice", "Alice@X.com", "secret123", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.NotEqual(t, "secret123", user.Password, "password must be stored hashed")

	assert.NotNil(t, env.users.CheckUser("alice", "secret123"))
	assert.Nil(t, env.users.CheckUser("alice", "wrong"))
	assert.Nil(t, env.users.CheckUser("nobody", "secret123"))
}

func TestRegisterValidation(t *testing.T) {
	env := setupEnv(t)

	_, err := env.users.Register("", "a@x.com", "secret123", "")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = env.users.Register("bob", "not-an-email", "secret123", "")
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = env.users.Register("bob", "bob@x.com", "short", "")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestRegisterUniqueness(t *testing.T) {
	env := setupEnv(t)

	_, err := env.users.Register("alice", "alice@x.com", "secret123", "")
	require.NoError(t, err)

	_, err = env.users.Register("alice", "other@x.com", "secret123", "")
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = env.users.Register("other", "alice@x.com", "secret123", "")
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestUpdateAvatar(t *testing.T) {
	env := setupEnv(t)

	user, err := env.users.Register("alice", "alice@x.com", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, env.users.UpdateAvatar(user.Id, "ab12.png"))
	updated, err := env.users.GetUser(user.Id)
	require.NoError(t, err)
	assert.Equal(t, "ab12.png", updated.Avatar)
}
