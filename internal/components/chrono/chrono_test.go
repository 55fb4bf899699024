package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImplLocation(t *testing.T) {
	clock, err := NewStandardImpl("Australia/Brisbane")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Australia/Brisbane", clock.Location().String())
	require.Equal(t, clock.Location(), clock.Now().Location())

	local, err := NewStandardImpl("")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, time.Local, local.Location())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("test", 8*60*60)
	got := StartOfDay(time.Date(2026, time.March, 26, 13, 45, 10, 5, loc))
	require.Equal(t, time.Date(2026, time.March, 26, 0, 0, 0, 0, loc), got)
}
