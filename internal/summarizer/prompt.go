package summarizer

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultPrompt asks for a JSON feature summary of a product explainer video.
const DefaultPrompt = `You are an experienced and savvy product designer with many years of experience as a full-stack engineer.
This is a product explainer transcript. 

%s

Summarize the content in a JSON output, highlighting the key features of the app, who is likely the target user, and include relevant implementation and user experience details.
`

var ErrBadTemplate = errors.New("prompt template must contain exactly one %s placeholder")

// RenderPrompt substitutes transcript into template. %% is a literal percent sign.
func RenderPrompt(template, transcript string) (string, error) {
	stripped := strings.ReplaceAll(template, "%%", "")
	if strings.Count(stripped, "%") != 1 || strings.Count(stripped, "%s") != 1 {
		return "", ErrBadTemplate
	}
	return fmt.Sprintf(template, transcript), nil
}

// LoadPromptTemplate picks the template from an inline value, a file, or the default.
func LoadPromptTemplate(inline, file string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		return string(data), nil
	}
	return DefaultPrompt, nil
}
