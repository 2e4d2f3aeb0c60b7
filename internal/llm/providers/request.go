package providers

// Request is one completion call. JSON asks the provider to constrain the reply to a JSON document.
type Request struct {
	System string
	Prompt string
	JSON   bool
}
