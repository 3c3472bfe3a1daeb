package identity_test

import (
	"encoding/json"
	"testing"

	"github.com/helmspoke/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAddMetadata(t *testing.T) {
	user := &identity.User{Username: "alice99"}
	user.AddMetadata("source", "signup").AddMetadata("plan", "free")

	assert.Equal(t, "signup", user.Metadata["source"])
	assert.Equal(t, "free", user.Metadata["plan"])
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := &identity.User{Username: "alice99", PasswordHash: "$2a$12$secret"}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "alice99")
	assert.NotContains(t, string(raw), "$2a$12$secret")
}

func TestGroupMembership(t *testing.T) {
	group := &identity.Group{Name: "ops"}
	assert.False(t, group.HasMember("alice99"))

	group.AddMember("alice99")
	assert.True(t, group.HasMember("alice99"))
	assert.False(t, group.HasMember("bob"))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "low", identity.SeverityLow.String())
	assert.Equal(t, "medium", identity.SeverityMedium.String())
	assert.Equal(t, "high", identity.SeverityHigh.String())
	assert.Equal(t, "critical", identity.SeverityCritical.String())
	assert.Equal(t, "unknown", identity.Severity(42).String())
}
