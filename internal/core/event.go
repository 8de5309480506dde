package core

import "encoding/json"

type EventType string

const (
	EventPollStarted     EventType = "pollStarted"
	EventPollEnded       EventType = "pollEnded"
	EventPollResults     EventType = "pollResults"
	EventUsersUpdated    EventType = "usersUpdated"
	EventNewMessage      EventType = "newMessage"
	EventKicked          EventType = "kicked"
	EventPollHistoryData EventType = "pollHistoryData"
	EventJoined          EventType = "joined"
	EventPong            EventType = "pong"
	EventError           EventType = "error"
)

// Event is one message toward a client. Data always carries a full
// snapshot of the affected entity, never a delta.
type Event struct {
	Type  EventType `json:"type"`
	Data  any       `json:"data,omitempty"`
	Error string    `json:"error,omitempty"`
}

func NewEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data}
}

func ErrorEvent(code string) Event {
	return Event{Type: EventError, Error: code}
}

func (e Event) Encode() (Frame, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
