package sse

// EventType names the events sent on the view and chat streams.
type EventType string

const (
	// EventState carries a full snapshot of a page view (modal + toasts).
	EventState EventType = "state"

	// EventMeta opens a chat stream.
	EventMeta EventType = "meta"

	// EventToken carries one streamed assistant fragment.
	EventToken EventType = "token"

	// EventError reports a failure; the stream still ends with done.
	EventError EventType = "error"

	// EventDone is always the last chat event.
	EventDone EventType = "done"
)

// MetaEvent is the first event of a chat stream.
type MetaEvent struct {
	Type      string `json:"type"`
	ViewID    string `json:"viewId"`
	MessageID int    `json:"messageId"`
	Provider  string `json:"provider"`
}

func NewMetaEvent(viewID string, messageID int, provider string) MetaEvent {
	return MetaEvent{
		Type:      string(EventMeta),
		ViewID:    viewID,
		MessageID: messageID,
		Provider:  provider,
	}
}

// TokenEvent carries one fragment of the pending assistant message.
type TokenEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

func NewTokenEvent(token string) TokenEvent {
	return TokenEvent{
		Type:  string(EventToken),
		Token: token,
	}
}

// ErrorEvent carries the user-facing error text.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{
		Type:  string(EventError),
		Error: msg,
	}
}

// DoneEvent ends a chat stream. Content is the folded assistant message.
type DoneEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func NewDoneEvent(content string) DoneEvent {
	return DoneEvent{
		Type:    string(EventDone),
		Content: content,
	}
}
