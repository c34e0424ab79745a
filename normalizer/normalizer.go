// Package normalizer recovers structured records from raw LLM answers. Models
// wrap their JSON in markdown fences or <json> tags, escape newlines, or pad
// it with stray whitespace; the cleaning pipeline strips that decoration in a
// fixed stage order before parsing.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/apex/log"

	"disastersheet/metrics"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s{2,}`)
	jsonTagWrapper = regexp.MustCompile(`(?i)^<json>(.*)</json>$`)
	// After stripBackticks a fenced block with a json language hint degrades
	// to a bare leading "json" word, so one pattern covers both shapes.
	leadingJSONWord = regexp.MustCompile(`(?i)^json\s+`)
)

// stripBackticks removes every backtick, dismantling markdown code fences.
func stripBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}

// flattenNewlines turns literal \n escape sequences and then raw newlines
// into single spaces.
func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// unescapeQuotes restores escaped double quotes to plain ones.
func unescapeQuotes(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// collapseWhitespace squeezes whitespace runs to one space and trims the ends.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// stripJSONTag unwraps an anchored <json>...</json> pair, case-insensitively.
func stripJSONTag(s string) string {
	if m := jsonTagWrapper.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// stripFenceHint drops a leading "json" language hint left behind after the
// fences themselves were removed.
func stripFenceHint(s string) string {
	return leadingJSONWord.ReplaceAllString(s, "")
}

// Clean runs the full cleaning pipeline over one raw answer. Stage order
// matters: later stages assume earlier ones already ran.
func Clean(raw string) string {
	s := stripBackticks(raw)
	s = flattenNewlines(s)
	s = unescapeQuotes(s)
	s = collapseWhitespace(s)
	s = stripJSONTag(s)
	s = stripFenceHint(s)
	return s
}

// Parse cleans one raw answer and parses it into a Record.
func Parse(raw string) (*Record, error) {
	return parseRecord(Clean(raw))
}

// Normalize converts a batch of raw answers into records, preserving input
// order. A malformed answer is dropped and logged; it never fails the batch.
func Normalize(rawAnswers []string) []*Record {
	records := make([]*Record, 0, len(rawAnswers))
	for i, raw := range rawAnswers {
		rec, err := Parse(raw)
		if err != nil {
			metrics.DroppedRecordsTotal.Inc()
			log.Warnf("dropping malformed answer %d: %v (raw: %.160q)", i, err, raw)
			continue
		}
		records = append(records, rec)
	}
	return records
}
