package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name          string
		reply         string
		rating        int
		justification string
	}{
		{"polish markers", "OCENA: 4\nUZASADNIENIE: Good answer", 4, "Good answer"},
		{"english markers", "RATING: 5\nJUSTIFICATION: Complete and correct.", 5, "Complete and correct."},
		{"case insensitive", "  rating: 2  \n  explanation:   too short  ", 2, "too short"},
		{"score marker", "Score: 3 points\nJustification: ok", 3, "ok"},
		{"slash fallback", "I'd say this is a 3/5 effort", 3, NoJustification},
		{"out of fallback", "Overall 4 out of 5.", 4, NoJustification},
		{"polish z fallback", "Daję 2 z 5", 2, NoJustification},
		{"rating word fallback", "my rating 5 for this", 5, NoJustification},
		{"garbage", "no rating info here", 0, NoJustification},
		{"empty", "", 0, NoJustification},
		{"out of range marker falls through", "RATING: 9\nbut really 4/5", 4, NoJustification},
		{"out of range everywhere", "RATING: 0\n7/5", 0, NoJustification},
		{"first valid marker wins", "RATING: 2\nRATING: 5", 2, NoJustification},
		{"first justification wins", "RATING: 4\nJUSTIFICATION: first\nJUSTIFICATION: second", 4, "first"},
		{"justification keeps later colons", "OCENA: 5\nUZASADNIENIE: Dobrze: bardzo", 5, "Dobrze: bardzo"},
		{"empty justification ignored", "RATING: 3\nJUSTIFICATION:\nEXPLANATION: real one", 3, "real one"},
		{"markdown bold", "**RATING: 4**\n**JUSTIFICATION:** Solid.", 4, "Solid."},
		{"bold marker before colon", "**RATING:** 4\n**JUSTIFICATION:** solid", 4, "solid"},
		{"bold wraps whole line", "RATING: 2\n**JUSTIFICATION: vague answer**", 2, "vague answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseReply(tt.reply)
			assert.Equal(t, tt.rating, v.Rating)
			assert.Equal(t, tt.justification, v.Justification)
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		err  error
	}{
		{"parts", `{"candidates":[{"content":{"role":"model","parts":[{"text":"RATING: 4"}]}}]}`, "RATING: 4", nil},
		{"first part with text", `{"candidates":[{"content":{"parts":[{"inlineData":{}},{"text":"second"}]}}]}`, "second", nil},
		{"content text", `{"candidates":[{"content":{"text":"legacy"}}]}`, "legacy", nil},
		{"candidate text", `{"candidates":[{"text":"older"}]}`, "older", nil},
		{"no candidates", `{"candidates":[]}`, "", ErrNoCandidates},
		{"role only", `{"candidates":[{"content":{"role":"model"}}]}`, "", ErrNoText},
		{"thinking budget spent", `{"candidates":[{"content":{"role":"model"}}],"usageMetadata":{"thoughtsTokenCount":1999}}`, "", ErrTokenLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText([]byte(tt.body))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ExtractText([]byte(`not json`))
	assert.Error(t, err)
}
