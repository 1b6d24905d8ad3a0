package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountID_UnmarshalJSON(t *testing.T) {
	t.Run("accepts a JSON number", func(t *testing.T) {
		var id domain.AccountID
		require.NoError(t, json.Unmarshal([]byte(`42`), &id))
		assert.Equal(t, domain.AccountID(42), id)
	})

	t.Run("accepts a numeric string", func(t *testing.T) {
		var id domain.AccountID
		require.NoError(t, json.Unmarshal([]byte(`"42"`), &id))
		assert.Equal(t, domain.AccountID(42), id)
	})

	t.Run("number and string decode to equal values", func(t *testing.T) {
		var fromNumber, fromString domain.AccountID
		require.NoError(t, json.Unmarshal([]byte(`1007`), &fromNumber))
		require.NoError(t, json.Unmarshal([]byte(`"1007"`), &fromString))
		assert.Equal(t, fromNumber, fromString)
	})

	t.Run("null and empty string decode to zero", func(t *testing.T) {
		var id domain.AccountID
		require.NoError(t, json.Unmarshal([]byte(`null`), &id))
		assert.Equal(t, domain.AccountID(0), id)

		require.NoError(t, json.Unmarshal([]byte(`""`), &id))
		assert.Equal(t, domain.AccountID(0), id)
	})

	t.Run("rejects non-numeric strings", func(t *testing.T) {
		var id domain.AccountID
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
	})
}

func TestParseAccountID(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  domain.AccountID
		ok    bool
	}{
		{"int64", int64(7), 7, true},
		{"int", 7, 7, true},
		{"float64 from json decode", float64(7), 7, true},
		{"numeric string", "7", 7, true},
		{"padded numeric string", "  7 ", 7, true},
		{"json.Number", json.Number("7"), 7, true},
		{"non-numeric string", "seven", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.ParseAccountID(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRoleFromAdminFlag(t *testing.T) {
	assert.Equal(t, domain.RoleAdmin, domain.RoleFromAdminFlag(true))
	assert.Equal(t, domain.RoleEndUser, domain.RoleFromAdminFlag(false))
}

func TestConnectionIdentity_States(t *testing.T) {
	pending := domain.ConnectionIdentity{}
	assert.True(t, pending.IsPending())
	assert.False(t, pending.IsAdmin())

	admin := domain.ConnectionIdentity{Role: domain.RoleAdmin}
	assert.False(t, admin.IsPending())
	assert.True(t, admin.IsAdmin())
}
