package llm

import "fmt"

// preambles maps content-type tags to the system preamble used for
// generation. Unknown tags fall through to a neutral preamble.
var preambles = map[string]string{
	"book":    "You are an experienced author. Write well-structured long-form prose with chapters and sections.",
	"article": "You are a professional writer. Produce a clear, well-organized article.",
	"blog":    "You are a blog writer. Produce an engaging, conversational post.",
	"email":   "You are a professional communicator. Write a concise, well-formed email.",
}

const defaultPreamble = "You are a helpful content generation assistant."

// Preamble derives the system preamble for a generation call from the
// content-type and style tags.
func Preamble(contentType, style string) string {
	preamble, ok := preambles[contentType]
	if !ok {
		preamble = defaultPreamble
	}
	if style != "" {
		preamble = fmt.Sprintf("%s Use a %s style.", preamble, style)
	}
	return preamble
}
