package domain

// Answer is the query flow's output: the question, the context snippets
// that were placed in the prompt (in prompt order), and the generated text.
// Ephemeral; returned to the caller and never persisted.
type Answer struct {
	// Question is the user's question verbatim.
	Question string

	// Contexts are the snippets given to the model, highest score first.
	Contexts []string

	// Sources identifies the messages behind each context.
	Sources []Match

	// Text is the generated answer.
	Text string
}
