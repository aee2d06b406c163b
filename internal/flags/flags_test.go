package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	r := New(map[string]bool{
		FlagDevLedger:   true,
		FlagEventMirror: false,
	})

	require.True(t, r.Enabled(FlagDevLedger))
	require.False(t, r.Enabled(FlagEventMirror))
	require.False(t, r.Enabled("no-such-flag"), "unknown flags default off")
}

func TestNilSafety(t *testing.T) {
	var r *Registry
	require.False(t, r.Enabled(FlagDevLedger))
	require.Empty(t, r.All())

	r = New(nil)
	require.False(t, r.Enabled(FlagDevLedger))
}

func TestAllReturnsCopy(t *testing.T) {
	r := New(map[string]bool{FlagDevLedger: true})

	all := r.All()
	all[FlagDevLedger] = false
	require.True(t, r.Enabled(FlagDevLedger))
}
