package chat

import (
	"sync"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the transcript.
type Message struct {
	ID      int    `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Pending bool   `json:"pending,omitempty"`
}

// Conversation is the transcript of one page view. Appends and fragment
// folding are safe from concurrent sends.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	nextID   int
	max      int
}

// NewConversation starts a transcript with the greeting. max bounds the
// number of kept messages; zero keeps everything.
func NewConversation(greeting string, max int) *Conversation {
	c := &Conversation{max: max}
	if greeting != "" {
		c.Append(RoleAssistant, greeting)
	}
	return c
}

// Append adds a finished message.
func (c *Conversation) Append(role Role, content string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendLocked(Message{Role: role, Content: content})
}

func (c *Conversation) appendLocked(m Message) Message {
	c.nextID++
	m.ID = c.nextID
	c.messages = append(c.messages, m)
	c.trimLocked()
	return m
}

// trimLocked drops the oldest finished messages beyond max. Pending
// messages are never dropped.
func (c *Conversation) trimLocked() {
	if c.max <= 0 || len(c.messages) <= c.max {
		return
	}
	excess := len(c.messages) - c.max
	kept := c.messages[:0]
	for _, m := range c.messages {
		if excess > 0 && !m.Pending {
			excess--
			continue
		}
		kept = append(kept, m)
	}
	c.messages = kept
}

func (c *Conversation) indexLocked(id int) int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// BeginAssistant appends an empty pending assistant message and returns the
// handle that streamed fragments are folded through.
func (c *Conversation) BeginAssistant() *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.appendLocked(Message{Role: RoleAssistant, Pending: true})
	return &Pending{conv: c, id: m.ID}
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// History returns the finished messages, oldest first, at most limit of
// them (zero means all).
func (c *Conversation) History(limit int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, 0, len(c.messages))
	for _, m := range c.messages {
		if !m.Pending {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Pending is an assistant message still being streamed.
type Pending struct {
	conv *Conversation
	id   int
}

// ID is the message id of the pending message.
func (p *Pending) ID() int { return p.id }

// Apply folds fragment into the pending message. Fragments apply in call
// order. Apply after Finish is ignored.
func (p *Pending) Apply(fragment string) {
	if fragment == "" {
		return
	}
	c := p.conv
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(p.id); i >= 0 && c.messages[i].Pending {
		c.messages[i].Content += fragment
	}
}

// Content returns the text folded so far.
func (p *Pending) Content() string {
	c := p.conv
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(p.id); i >= 0 {
		return c.messages[i].Content
	}
	return ""
}

// Finish marks the message complete and returns its content.
func (p *Pending) Finish() string {
	c := p.conv
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(p.id)
	if i < 0 {
		return ""
	}
	c.messages[i].Pending = false
	return c.messages[i].Content
}

// Fail finishes the message with text. A message that already received
// fragments keeps them and text follows as its own message.
func (p *Pending) Fail(text string) string {
	c := p.conv
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(p.id)
	if i < 0 {
		return text
	}
	c.messages[i].Pending = false
	if c.messages[i].Content == "" {
		c.messages[i].Content = text
		return text
	}
	c.appendLocked(Message{Role: RoleAssistant, Content: text})
	return text
}
