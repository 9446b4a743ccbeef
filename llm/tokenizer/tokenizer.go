// Package tokenizer provides token counting for prompt budgeting.
package tokenizer

// Tokenizer counts tokens for a given model family.
type Tokenizer interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) (int, error)
}

// Estimator is a dependency-free fallback that approximates token counts
// at four characters per token. Use when the model encoding is unknown.
type Estimator struct{}

// CountTokens estimates the token count of text.
func (Estimator) CountTokens(text string) (int, error) {
	if len(text) == 0 {
		return 0, nil
	}
	return (len(text) + 3) / 4, nil
}
