// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

import (
	"fmt"
	"strings"
)

// KeyCheckpatchIgnore adds suppression categories for the annotated commit.
const KeyCheckpatchIgnore = "checkpatch-ignore"

// knownKeys are the setting names accepted in a note.
var knownKeys = []string{KeyCheckpatchIgnore}

// Override is one `key=v1,v2` line of a note.
type Override struct {
	Key    string
	Values []string
}

// Warning describes a note line that was skipped.
type Warning struct {
	Line       int
	Text       string
	Reason     string
	Suggestion string
}

func (w Warning) String() string {
	s := fmt.Sprintf("line %d: %s: %q", w.Line, w.Reason, w.Text)
	if w.Suggestion != "" {
		s += fmt.Sprintf(" (did you mean %q?)", w.Suggestion)
	}
	return s
}

// Result is the outcome of parsing a note.
type Result struct {
	Overrides []Override
	Warnings  []Warning
}

// Values returns every value of every override with the given key, in note order.
func (r Result) Values(key string) []string {
	var out []string
	for _, o := range r.Overrides {
		if o.Key == key {
			out = append(out, o.Values...)
		}
	}
	return out
}

// Parse turns note text into overrides. It never fails: lines that don't
// parse are reported as warnings and skipped.
func Parse(note Note) Result {
	var res Result
	if !note.Present {
		return res
	}

	for i, line := range strings.Split(note.Text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1

		if strings.Count(line, "=") != 1 {
			res.Warnings = append(res.Warnings, Warning{
				Line:   lineNo,
				Text:   line,
				Reason: "malformed line, expected key=value",
			})
			continue
		}

		key, value, _ := strings.Cut(line, "=")
		if !isKnownKey(key) {
			res.Warnings = append(res.Warnings, Warning{
				Line:       lineNo,
				Text:       line,
				Reason:     fmt.Sprintf("unknown setting %q", key),
				Suggestion: suggestKey(key),
			})
			continue
		}

		res.Overrides = append(res.Overrides, Override{Key: key, Values: splitValues(value)})
	}
	return res
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func splitValues(value string) []string {
	values := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		values = append(values, item)
	}
	return values
}
