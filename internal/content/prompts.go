package content

import (
	"regexp"
	"strconv"
	"strings"
)

var imagePromptRe = regexp.MustCompile("(?s)##\\s*Image\\s*(\\d+):\\s*(.+?)\\n.*?```[^\\n]*\\n(.+?)```")

// ParseImagePrompts returns each "## Image N: Title" marker paired with the
// first fenced code block after it. Order and numbering are kept as found.
func ParseImagePrompts(raw string) []ImagePrompt {
	var prompts []ImagePrompt
	for _, m := range imagePromptRe.FindAllStringSubmatch(raw, -1) {
		// digits only, so the sole error is overflow, where Atoi clamps
		n, _ := strconv.Atoi(m[1])
		prompts = append(prompts, ImagePrompt{
			Number: n,
			Title:  strings.TrimSpace(m[2]),
			Prompt: strings.TrimSpace(m[3]),
		})
	}
	return prompts
}
