package main

import (
	"bytes"
	"testing"

	"TeleClinic/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	t.Setenv("DB_URL", "postgres://clinic@localhost/clinic")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("ADMIN_API_KEY", "admin-key")
	t.Setenv("SYMMETRIC_KEY", key)

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"issue-token", "--user", "d1", "--role", utils.RoleDoctor})
	require.NoError(t, root.Execute())

	tokens, err := utils.NewTokenMaker(key)
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(string(bytes.TrimSpace(out.Bytes())), utils.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "d1", claims.UserID)
}

func TestIssueTokenRejectsUnknownRole(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"issue-token", "--user", "d1", "--role", "Nurse"})
	assert.ErrorContains(t, root.Execute(), "role must be")
}

func TestCommandsAreRegistered(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "migrate", "fix-index", "issue-token"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
