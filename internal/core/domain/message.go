package domain

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	// RoleSystem carries behavioural instructions. System messages only
	// exist inside a single request and are never persisted to history.
	RoleSystem Role = "system"

	// RoleUser is a message from the person asking.
	RoleUser Role = "user"

	// RoleAssistant is a generated answer.
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Message is one entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage returns a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ConversationHistory is an ordered, append-only sequence of messages owned
// by the calling session. Only user and assistant messages belong in it.
type ConversationHistory []Message

// WorkingCopy returns an independent copy of the history. Appending to the
// copy never writes into the receiver's backing array.
func (h ConversationHistory) WorkingCopy() ConversationHistory {
	out := make(ConversationHistory, len(h), len(h)+2)
	copy(out, h)
	return out
}

// Extend returns a new history holding h followed by msgs.
// The receiver is left untouched even when it has spare capacity.
func (h ConversationHistory) Extend(msgs ...Message) ConversationHistory {
	out := make(ConversationHistory, 0, len(h)+len(msgs))
	out = append(out, h...)
	return append(out, msgs...)
}

// Len returns the number of messages.
func (h ConversationHistory) Len() int {
	return len(h)
}

// Last returns the final message, or false if the history is empty.
func (h ConversationHistory) Last() (Message, bool) {
	if len(h) == 0 {
		return Message{}, false
	}
	return h[len(h)-1], true
}

// SamplingParams controls generation randomness and length.
type SamplingParams struct {
	// Temperature is the sampling temperature. Low values keep answers
	// close to the provided context.
	Temperature float32

	// MaxTokens caps the response length.
	MaxTokens int
}

// Turn is the full outcome of one answering call.
type Turn struct {
	// Query is the bare user query.
	Query string

	// Answer is the generated text, or a visible failure message.
	Answer string

	// Context holds the records used to build the context block.
	Context []RetrievedRecord

	// History is the caller's history extended with the query and answer.
	History ConversationHistory

	// RetrievalErr is set when the store query failed and the turn fell
	// back to an empty context.
	RetrievalErr error

	// GenerationErr is set when the provider failed and Answer holds the
	// failure message instead of a generated reply.
	GenerationErr error
}

// Failed returns true if generation did not produce an answer.
func (t *Turn) Failed() bool {
	return t.GenerationErr != nil
}
