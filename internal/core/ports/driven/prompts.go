package driven

// PromptStore resolves named prompt templates. A user override wins over
// the built-in text.
type PromptStore interface {
	// Load fails for a name with neither override nor built-in.
	Load(name string) (string, error)

	// Reload forgets cached overrides.
	Reload()
}

// PromptAnswerSystem is the system message sent ahead of every question.
// It is used verbatim, without placeholders.
const PromptAnswerSystem = "answer_system"
