package llm

// Client abstracts an LLM provider used by the classifier.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// Classify takes the instruction text and zero or more image payloads
	// (data URIs) and returns the model's raw textual answer. An empty answer
	// with a nil error means the provider produced no usable content.
	Classify(promptText string, images []string) (string, error)
	// SourceName returns a short provider label for logs (e.g., "ChatGPT", "Gemini").
	SourceName() string
}
