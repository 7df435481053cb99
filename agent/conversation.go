package agent

import "time"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation log. Messages are
// immutable once appended; their order reflects the chronological
// dialogue between the agent and the model.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Conversation is an append-only ordered sequence of messages built
// during a run. It is owned exclusively by the Agent for the duration
// of that run.
type Conversation struct {
	messages []Message
}

// NewConversation creates an empty conversation log.
func NewConversation() *Conversation {
	return &Conversation{messages: make([]Message, 0)}
}

// Append adds a message with the given role and content.
func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// AppendResponse adds an assistant message carrying the model response,
// preserving any extra fields the model returned alongside the content.
func (c *Conversation) AppendResponse(resp *Response) {
	c.messages = append(c.messages, Message{
		Role:      RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now(),
		Extra:     resp.Extra,
	})
}

// Messages returns a copy of the conversation log.
func (c *Conversation) Messages() []Message {
	m := make([]Message, len(c.messages))
	copy(m, c.messages)
	return m
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message, or a zero Message if the log
// is empty.
func (c *Conversation) Last() Message {
	if len(c.messages) == 0 {
		return Message{}
	}
	return c.messages[len(c.messages)-1]
}
