package relay

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_KeepsFirstOutcome(t *testing.T) {
	connected := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		signal(connected, nil)
		signal(connected, errors.New("connect_error"))
		signal(connected, nil)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("later outcomes blocked the callback")
	}

	require.NoError(t, <-connected)
	select {
	case err := <-connected:
		assert.Failf(t, "unexpected second outcome", "%v", err)
	default:
	}
}
