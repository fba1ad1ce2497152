package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventParserSingleEvent(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("event: notification\ndata: {\"type\":\"FRIEND_REQUEST\"}\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "notification", events[0].Type)
	assert.Equal(t, `{"type":"FRIEND_REQUEST"}`, events[0].Data)
}

func TestEventParserArbitraryChunkBoundaries(t *testing.T) {
	t.Parallel()

	raw := "event: notification\ndata: {\"type\":\"FRIEND_REQUEST\"}\n\n"

	// Every possible split point, including mid-line and mid-token, must
	// produce exactly the same single event.
	for split := 0; split <= len(raw); split++ {
		parser := newEventParser()

		var events []Event
		events = append(events, parser.Feed([]byte(raw[:split]))...)
		events = append(events, parser.Feed([]byte(raw[split:]))...)

		require.Len(t, events, 1, "split at byte %d", split)
		assert.Equal(t, "notification", events[0].Type, "split at byte %d", split)
		assert.Equal(t, `{"type":"FRIEND_REQUEST"}`, events[0].Data, "split at byte %d", split)
	}
}

func TestEventParserByteAtATime(t *testing.T) {
	t.Parallel()

	raw := "event: connect\ndata: connected\n\nevent: notification\ndata: hello\n\n"
	parser := newEventParser()

	var events []Event
	for i := 0; i < len(raw); i++ {
		events = append(events, parser.Feed([]byte{raw[i]})...)
	}

	require.Len(t, events, 2)
	assert.Equal(t, Event{Type: "connect", Data: "connected"}, events[0])
	assert.Equal(t, Event{Type: "notification", Data: "hello"}, events[1])
}

func TestEventParserDefaultsToMessageType(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("data: plain\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].Type)
	assert.Equal(t, "plain", events[0].Data)
}

func TestEventParserResetsTypeBetweenEvents(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("event: notification\ndata: one\n\ndata: two\n\n"))
	require.Len(t, events, 2)
	assert.Equal(t, "notification", events[0].Type)
	assert.Equal(t, "message", events[1].Type)
}

func TestEventParserJoinsMultipleDataLines(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("data: line one\ndata: line two\n\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "line one\nline two", events[0].Data)
}

func TestEventParserIgnoresBlankEventsAndUnknownLines(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("\n\n: comment\nid: 42\nretry: 1000\n\n"))
	assert.Empty(t, events)
}

func TestEventParserHandlesCRLF(t *testing.T) {
	t.Parallel()

	parser := newEventParser()

	events := parser.Feed([]byte("event: notification\r\ndata: payload\r\n\r\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "notification", events[0].Type)
	assert.Equal(t, "payload", events[0].Data)
}
