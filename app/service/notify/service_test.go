package notify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishNeverBlocks(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	// overflow the buffer; extra notices are dropped, not blocked on
	for i := 0; i < bufferSize*2; i++ {
		svc.Publish(LevelInfo, "notice")
	}

	received := 0
	for {
		select {
		case <-svc.Channel():
			received++
			continue
		default:
		}
		break
	}

	require.Equal(t, bufferSize, received)
}

func TestPublishAfterShutdownIsHarmless(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, svc.Shutdown())
	svc.Publish(LevelWarn, "late")
}
