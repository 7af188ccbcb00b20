package audit

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolean(t *testing.T) {
	truthy := []string{"yes", "Yes", "YES", "true", "True", "1", " 1 ", "\ttrue"}
	for _, v := range truthy {
		assert.True(t, parseBoolean(v), "expected %q to read as true", v)
	}

	// Everything outside the exact synonym set is false, including values a
	// looser parser would accept.
	falsy := []string{"no", "false", "0", "", "on", "y", "2", "enabled"}
	for _, v := range falsy {
		assert.False(t, parseBoolean(v), "expected %q to read as false", v)
	}
}

func TestLookupFlag(t *testing.T) {
	entry, ok := LookupFlag(FlagBanned)
	require.True(t, ok)
	assert.Equal(t, "banned", entry.DisplayName)
	assert.Equal(t, KindBoolean, entry.Kind)

	_, ok = LookupFlag("tapir_users.flag_nonexistent")
	assert.False(t, ok)
}

func TestFlagsSortedAndUnique(t *testing.T) {
	entries := Flags()
	require.Len(t, entries, 12)

	assert.True(t, sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	}))

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		assert.False(t, names[entry.DisplayName], "duplicate display name %q", entry.DisplayName)
		names[entry.DisplayName] = true
	}
}

func TestNewFlagPayload(t *testing.T) {
	t.Run("boolean from bool", func(t *testing.T) {
		p, err := NewFlagPayload(FlagProxy, true)
		require.NoError(t, err)
		assert.Equal(t, FlagPayload{Flag: FlagProxy, Value: "1"}, p)

		p, err = NewFlagPayload(FlagProxy, false)
		require.NoError(t, err)
		assert.Equal(t, "0", p.Value)
	})

	t.Run("boolean from string synonym", func(t *testing.T) {
		p, err := NewFlagPayload(FlagSuspect, "yes")
		require.NoError(t, err)
		assert.Equal(t, "1", p.Value)

		p, err = NewFlagPayload(FlagSuspect, "no")
		require.NoError(t, err)
		assert.Equal(t, "0", p.Value)
	})

	t.Run("boolean rejects non-bool types", func(t *testing.T) {
		_, err := NewFlagPayload(FlagProxy, 17)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("number from int and float", func(t *testing.T) {
		p, err := NewFlagPayload(FlagEndorsementPointValue, 10)
		require.NoError(t, err)
		assert.Equal(t, "10", p.Value)

		// JSON bodies deliver numbers as float64.
		p, err = NewFlagPayload(FlagEndorsementPointValue, float64(10))
		require.NoError(t, err)
		assert.Equal(t, "10", p.Value)

		p, err = NewFlagPayload(FlagEndorsementPointValue, 2.5)
		require.NoError(t, err)
		assert.Equal(t, "2.5", p.Value)
	})

	t.Run("number rejects non-decimal strings", func(t *testing.T) {
		_, err := NewFlagPayload(FlagEndorsementPointValue, "ten")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, FlagEndorsementPointValue, verr.Field)
	})

	t.Run("unregistered flag", func(t *testing.T) {
		_, err := NewFlagPayload("tapir_users.flag_mystery", true)
		var uerr *UnknownFlagError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "tapir_users.flag_mystery", uerr.Flag)
	})
}
