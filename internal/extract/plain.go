package extract

import "strings"

// extractPlain decodes .txt and .md content as UTF-8, dropping invalid
// byte sequences. Markdown is passed through unmodified.
func extractPlain(content []byte) (string, error) {
	return strings.ToValidUTF8(string(content), ""), nil
}
