// internal/judge/apikey.go
// Package: judge
package judge

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ResolveAPIKey returns configured when set (normally GEMINI_API_KEY bound
// through viper). Otherwise, if in is non-nil, the user is asked for a key on
// out. An empty result means judging is disabled for the run.
func ResolveAPIKey(configured string, in io.Reader, out io.Writer) string {
	if key := strings.TrimSpace(configured); key != "" {
		return key
	}
	if in == nil {
		return ""
	}
	if out == nil {
		out = io.Discard
	}
	fmt.Fprint(out, "Gemini API key not found. Enter a key to enable judging (empty to skip): ")
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return ""
	}
	key := strings.TrimSpace(line)
	if key == "" {
		fmt.Fprintln(out, "Judging disabled for this run.")
	}
	return key
}
