// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import "github.com/bartekus/patchgate/internal/notes"

// DecisionKind tags a Decision.
type DecisionKind string

const (
	DecisionExempt  DecisionKind = "exempt"
	DecisionProceed DecisionKind = "proceed"
)

// Decision is the policy outcome for one commit: either Exempt with a
// reason, or Proceed with the set of message types to ignore.
type Decision struct {
	Kind     DecisionKind
	Reason   string
	Suppress *Set
}

func Exempt(reason string) Decision {
	return Decision{Kind: DecisionExempt, Reason: reason}
}

func Proceed(suppress *Set) Decision {
	return Decision{Kind: DecisionProceed, Suppress: suppress}
}

func (d Decision) IsExempt() bool { return d.Kind == DecisionExempt }

// BuildSuppressions merges the layers: base, then conditional when
// restricted is true, then the types ignored by the commit note.
// Repeats across layers collapse.
func BuildSuppressions(base, conditional []string, restricted bool, noteIgnores []string) *Set {
	set := NewSet(base...)
	if restricted {
		set.Add(conditional...)
	}
	set.Add(noteIgnores...)
	return set
}

// Suppressions applies BuildSuppressions with the lists configured in p and
// every checkpatch-ignore value of the parsed note.
func (p *Policy) Suppressions(restricted bool, note notes.Result) *Set {
	return BuildSuppressions(p.Ignore, p.Restricted.Ignore, restricted, note.Values(notes.KeyCheckpatchIgnore))
}
