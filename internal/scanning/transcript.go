package scanning

import (
	"regexp"
	"strings"
)

// transcribePrompt is shared by the vision model providers. The extraction
// engine does the structuring, so the model only has to read.
const transcribePrompt = `You are reading a photo or scan of a retail receipt. Transcribe every line of text exactly as printed, from top to bottom.

Rules:
- Output one receipt line per line of output, in the original order
- Keep prices, quantities, dates and symbols ($, |, x) exactly as printed
- Keep item names and their prices on the same line when they are printed on the same line
- Do not summarize, translate, correct or reformat anything
- Do not add commentary, headings or markdown code blocks
- If there is no readable text, return nothing`

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
)

// normalizeText collapses OCR whitespace noise while keeping line breaks
func normalizeText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// cleanTranscript strips the markdown fences vision models like to add
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// drop the opening fence and its language tag
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return normalizeText(text)
}
