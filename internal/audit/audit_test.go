package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIdentifier(t *testing.T) {
	assert.Equal(t, "", HashIdentifier(""))
	assert.Equal(t,
		"ff8d9819fc0e12bf0d24892e45987e249a28dce836a85cad60e28eaaa8c6d976",
		HashIdentifier("alice@example.com"),
	)
	assert.NotEqual(t, HashIdentifier("a@b.c"), HashIdentifier("a@b.d"))
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(2)

	sink.Emit(context.Background(), Event{EventType: "request_code"})

	select {
	case event := <-sink.Events():
		assert.Equal(t, "request_code", event.EventType)
	default:
		t.Fatal("event not delivered")
	}
}

func TestChannelSinkRespectsContext(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Emit(context.Background(), Event{EventType: "first"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		// Buffer is full; a cancelled context must unblock instead of
		// hanging forever.
		sink.Emit(ctx, Event{EventType: "second"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked past context cancellation")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		EventType: "verify_code",
		Step:      "otp",
		EmailHash: HashIdentifier("alice@example.com"),
		Success:   true,
	})
	sink.Emit(context.Background(), Event{EventType: "logout", Success: true})

	scanner := bufio.NewScanner(&buf)
	require.True(t, scanner.Scan())

	var first Event
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &first))
	assert.Equal(t, "verify_code", first.EventType)
	assert.Equal(t, "otp", first.Step)
	assert.True(t, first.Success)

	require.True(t, scanner.Scan(), "second event missing")
	require.False(t, scanner.Scan(), "more than two lines written")
}
