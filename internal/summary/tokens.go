package summary

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is the tokenizer used for bundle size estimates. cl100k_base
// is a reasonable proxy across current chat models.
const tokenEncoding = "cl100k_base"

// CountTokens estimates the token count of the rendered bundle.
func CountTokens(text string) (int, error) {
	encoding, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return 0, fmt.Errorf("summary: initialize tokenizer: %w", err)
	}
	return len(encoding.Encode(text, nil, nil)), nil
}
