// internal/judge/rubric.go
// Package: judge
package judge

import (
	"fmt"

	"github.com/mwiater/gollamabench/internal/catalog"
)

const englishRubric = `Evaluate the quality of the answer below to the original question.
Your evaluation should cover:
1. Correctness (is the answer true and logical?).
2. Completeness (does the answer fully address the question?).
3. Clarity (is the answer clear and well phrased?).
4. Instruction adherence (does the answer meet every requirement of the question, e.g. code format, comments?).

Rate on a scale from 1 (very poor) to 5 (excellent).
Then justify your rating in a few sentences.

Answer format:
RATING: [number from 1 to 5]
JUSTIFICATION: [your justification]

---
ORIGINAL QUESTION:
%s

---
ANSWER TO EVALUATE:
%s
`

const polishRubric = `Oceń jakość poniższej odpowiedzi na oryginalne pytanie.
Twoja ocena powinna dotyczyć:
1. Poprawności (czy odpowiedź jest prawdziwa/logiczna?).
2. Kompletności (czy odpowiedź w pełni odnosi się do pytania?).
3. Zrozumiałości (czy odpowiedź jest jasna i dobrze sformułowana?).
4. Zgodności z instrukcją (czy odpowiedź spełnia wszystkie wymogi pytania, np. format kodu, komentarze?).

Twoja ocena powinna być w skali od 1 (bardzo słaba) do 5 (doskonała).
Następnie uzasadnij swoją ocenę w kilku zdaniach.

Format odpowiedzi:
OCENA: [liczba od 1 do 5]
UZASADNIENIE: [Twoje uzasadnienie]

---
ORYGINALNE PYTANIE:
%s

---
ODPOWIEDŹ DO OCENY:
%s
`

// Rubric builds the evaluation prompt, embedding both texts verbatim.
// Unknown languages get the English rubric.
func Rubric(lang catalog.Language, originalPrompt, candidate string) string {
	tmpl := englishRubric
	if lang == catalog.Polish {
		tmpl = polishRubric
	}
	return fmt.Sprintf(tmpl, originalPrompt, candidate)
}
