package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFakeClock_AfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	var fired []string

	c.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "two") })
	require.Equal(t, 2, c.Pending())

	c.Advance(time.Second)
	require.Empty(t, fired)

	c.Advance(4 * time.Second)
	require.Equal(t, []string{"two", "five"}, fired)
	require.Equal(t, 0, c.Pending())
	require.Equal(t, epoch.Add(5*time.Second), c.Now())
}

func TestFakeClock_Stop(t *testing.T) {
	c := Fake(epoch)
	fired := false

	timer := c.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Advance(time.Minute)
	require.False(t, fired)
	require.Equal(t, 0, c.Pending())
}

func TestFakeClock_CallbackSchedulesCallback(t *testing.T) {
	c := Fake(epoch)
	count := 0

	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(time.Second)
	require.Equal(t, 1, count)
	require.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	require.Equal(t, 2, count)
}

func TestFakeClock_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})

	go func() {
		c.AfterFunc(time.Second, func() {})
		close(done)
	}()

	c.WaitForTimers(1)
	<-done
	require.Equal(t, 1, c.Pending())
}
