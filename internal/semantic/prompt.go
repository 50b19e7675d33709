package semantic

import (
	"fmt"
	"strings"
	"text/template"

	"subseg/internal/language"
)

// SystemPrompt frames every split request.
const SystemPrompt = "You split subtitle text for display. Respond with a single JSON object and nothing else."

var splitTemplate = template.Must(template.New("split").Parse(`## Role
You are a professional Netflix subtitle splitter in **{{.Language}}**.

## Task
Split the given subtitle text into **{{.Parts}}** parts, each less than **{{.WordLimit}}** words.

1. Maintain sentence meaning coherence according to Netflix subtitle standards
2. MOST IMPORTANT: Keep parts roughly equal in length (minimum 3 words each)
3. Split at natural points like punctuation marks or conjunctions
4. If provided text is repeated words, simply split at the middle of the repeated words.

## Steps
1. Analyze the sentence structure, complexity, and key splitting challenges
2. Generate two alternative splitting approaches with {{.Marker}} tags at split positions
3. Compare both approaches highlighting their strengths and weaknesses
4. Choose the best splitting approach

## Given Text
<split_this_sentence>
{{.Sentence}}
</split_this_sentence>

## Output in only JSON format and no other text
` + "```json" + `
{
    "analysis": "Brief description of sentence structure, complexity, and key splitting challenges",
    "split1": "First splitting approach with {{.Marker}} tags at split positions",
    "split2": "Alternative splitting approach with {{.Marker}} tags at split positions",
    "assess": "Comparison of both approaches highlighting their strengths and weaknesses",
    "choice": "1 or 2"
}
` + "```" + `

Note: Start your answer with ` + "```json" + ` and end with ` + "```" + `, do not add any other text.`))

type promptData struct {
	Language  string
	Parts     int
	WordLimit int
	Marker    string
	Sentence  string
}

// BuildPrompt renders the split prompt for req using marker as the break tag.
// The language is rendered by display name.
func BuildPrompt(req Request, marker string) (string, error) {
	var b strings.Builder
	err := splitTemplate.Execute(&b, promptData{
		Language:  language.DisplayName(req.Language),
		Parts:     req.Parts,
		WordLimit: req.WordLimit,
		Marker:    marker,
		Sentence:  req.Sentence,
	})
	if err != nil {
		return "", fmt.Errorf("render split prompt: %w", err)
	}
	return b.String(), nil
}

// perturb pads the prompt before its final line so each retry sends distinct
// text that survives trimming.
func perturb(prompt string, attempt int) string {
	if attempt <= 0 {
		return prompt
	}
	idx := strings.LastIndex(prompt, "\n")
	if idx < 0 {
		return prompt + "\n" + strings.Repeat(" ", attempt) + "."
	}
	return prompt[:idx] + strings.Repeat(" ", attempt) + prompt[idx:]
}
