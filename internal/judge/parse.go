// internal/judge/parse.go
// Package: judge
package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoJustification is used when the reply carries no justification line.
const NoJustification = "No justification provided."

var (
	ratingMarkers        = []string{"OCENA:", "RATING:", "SCORE:"}
	justificationMarkers = []string{"UZASADNIENIE:", "JUSTIFICATION:", "EXPLANATION:"}

	firstInteger = regexp.MustCompile(`\d+`)

	// Tried in order against the lowercased reply when no marker line parsed.
	fallbackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d)/5`),
		regexp.MustCompile(`(\d)\s*out of\s*5`),
		regexp.MustCompile(`(\d)\s*z\s*5`),
		regexp.MustCompile(`rating\s*(\d)`),
		regexp.MustCompile(`score\s*(\d)`),
		regexp.MustCompile(`ocena\s*(\d)`),
	}
)

// Errors returned by ExtractText.
var (
	ErrNoCandidates = errors.New("judge returned no candidates")
	ErrNoText       = errors.New("judge produced no text")
	ErrTokenLimit   = errors.New("judge spent its output token limit before producing text")
)

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata map[string]any `json:"usageMetadata"`
}

type candidate struct {
	Content *content `json:"content"`
	Text    *string  `json:"text"`
}

type content struct {
	Role  string  `json:"role"`
	Parts []part  `json:"parts"`
	Text  *string `json:"text"`
}

type part struct {
	Text *string `json:"text"`
}

// ExtractText pulls the reply text out of a generateContent response body.
// The first candidate is read from content.parts[*].text, content.text or
// the candidate's own text field, in that order.
func ExtractText(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode judge response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	c := resp.Candidates[0]
	if c.Content != nil {
		for _, p := range c.Content.Parts {
			if p.Text != nil {
				return *p.Text, nil
			}
		}
		if len(c.Content.Parts) == 0 && c.Content.Text != nil {
			return *c.Content.Text, nil
		}
		if _, ok := resp.UsageMetadata["thoughtsTokenCount"]; ok {
			return "", ErrTokenLimit
		}
		return "", ErrNoText
	}
	if c.Text != nil {
		return *c.Text, nil
	}
	return "", ErrNoText
}

// ParseReply turns the judge's free-text reply into a Verdict. Rating 0 means
// no valid rating could be found.
func ParseReply(text string) Verdict {
	v := Verdict{Justification: NoJustification}
	justified := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		upper := strings.ToUpper(line)
		switch {
		case containsAny(upper, ratingMarkers):
			if v.Rating == 0 {
				v.Rating = lineRating(line)
			}
		case !justified && containsAny(upper, justificationMarkers):
			if _, rest, ok := strings.Cut(line, ":"); ok {
				if rest = strings.Trim(rest, "* \t"); rest != "" {
					v.Justification = rest
					justified = true
				}
			}
		}
	}

	if v.Rating == 0 {
		v.Rating = fallbackRating(strings.ToLower(text))
	}
	return v
}

// lineRating returns the first integer on a marker line if it is in [1,5].
func lineRating(line string) int {
	n, err := strconv.Atoi(firstInteger.FindString(line))
	if err != nil || !validRating(n) {
		return 0
	}
	return n
}

func fallbackRating(lower string) int {
	for _, re := range fallbackPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && validRating(n) {
				return n
			}
		}
	}
	return 0
}

func validRating(n int) bool { return n >= 1 && n <= 5 }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
