package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pdf-extract-api/internal/domain"
)

// Response coercion: the inference backend returns free text that is
// expected to contain JSON but carries no guarantee. The fallback chain is
// strip code fences, extract the first bracketed block, then try the whole
// string.

var (
	arrayBlockRegex  = regexp.MustCompile(`(?s)\[.*\]`)
	objectBlockRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

// Phrases that indicate the model declined rather than extracted. Treated as
// a parse failure so the retry budget applies.
var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// coerceJSON locates JSON embedded in raw model text and unmarshals it into
// v. Returns domain.ErrMalformedResponse (with the raw text attached) when
// nothing parsable is found.
func coerceJSON(raw string, v interface{}) error {
	text := stripFences(strings.TrimSpace(raw))

	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return malformed(raw, "model refused the request")
		}
	}

	var candidates []string
	if m := arrayBlockRegex.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	if m := objectBlockRegex.FindString(text); m != "" {
		candidates = append(candidates, m)
	}
	candidates = append(candidates, text)

	for _, candidate := range candidates {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}
	return malformed(raw, "no parsable JSON in response")
}

// stripFences removes surrounding markdown code-fence markers if present.
func stripFences(text string) string {
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func malformed(raw, reason string) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrMalformedResponse, reason, truncate(raw, 500))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Date-shaped value detection for field typing.
var dateValueRegexes = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`),
	regexp.MustCompile(`^\d{4}[/.-]\d{1,2}[/.-]\d{1,2}$`),
	regexp.MustCompile(`(?i)^\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{2,4}$`),
	regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{2,4}$`),
}

// looksLikeDate reports whether an extracted value is date-shaped.
func looksLikeDate(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	for _, re := range dateValueRegexes {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// cellString coerces an arbitrary JSON value to a table cell string,
// replacing embedded newlines with spaces.
func cellString(v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case float64:
		s = trimFloat(t)
	case bool:
		if t {
			s = "true"
		} else {
			s = "false"
		}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// trimFloat renders a JSON number without a spurious trailing ".000000".
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
