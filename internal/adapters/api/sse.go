package api

import "strings"

const defaultEventType = "message"

// Event is one decoded server-push event.
type Event struct {
	Type string
	Data string
}

// eventParser incrementally decodes the text/event-stream framing: lines
// arrive in arbitrary chunks, only fully terminated lines are consumed,
// and a blank line closes the event being assembled. State never survives
// a reconnect; each connection gets a fresh parser.
type eventParser struct {
	buf       string
	eventType string
	dataLines []string
}

func newEventParser() *eventParser {
	return &eventParser{eventType: defaultEventType}
}

// Feed appends a chunk and returns every event completed by it.
func (p *eventParser) Feed(chunk []byte) []Event {
	p.buf += string(chunk)

	var events []Event
	for {
		idx := strings.IndexByte(p.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSuffix(p.buf[:idx], "\r")
		p.buf = p.buf[idx+1:]

		switch {
		case line == "":
			if len(p.dataLines) > 0 {
				events = append(events, Event{
					Type: p.eventType,
					Data: strings.Join(p.dataLines, "\n"),
				})
			}
			p.eventType = defaultEventType
			p.dataLines = nil
		case strings.HasPrefix(line, "event:"):
			p.eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			p.dataLines = append(p.dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	return events
}
