// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"strings"

	"github.com/bartekus/patchgate/internal/vcs"
)

const (
	ReasonMaintainer  = "release-maintainer commit"
	ReasonCoverLetter = "tooling cover-letter commit"
)

// Rule exempts a commit from linting when Match returns true.
type Rule struct {
	Name   string
	Reason string
	Match  func(vcs.CommitMetadata) bool
}

// AuthorIs matches commits whose author name is exactly one of names.
func AuthorIs(names ...string) func(vcs.CommitMetadata) bool {
	return func(m vcs.CommitMetadata) bool {
		for _, n := range names {
			if m.Author == n {
				return true
			}
		}
		return false
	}
}

// MessageContains matches commits whose raw message contains any of markers.
func MessageContains(markers ...string) func(vcs.CommitMetadata) bool {
	return func(m vcs.CommitMetadata) bool {
		for _, marker := range markers {
			if marker != "" && strings.Contains(m.Message, marker) {
				return true
			}
		}
		return false
	}
}

// Exemption is a positive classifier result.
type Exemption struct {
	Rule   string
	Reason string
}

// Classifier evaluates exemption rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the exemption rules configured by p, in evaluation order.
func (p *Policy) Rules() []Rule {
	return []Rule{
		{
			Name:   "maintainer",
			Reason: ReasonMaintainer,
			Match:  AuthorIs(p.Maintainers...),
		},
		{
			Name:   "cover-letter",
			Reason: ReasonCoverLetter,
			Match:  MessageContains(p.Markers...),
		},
	}
}

// Classify returns the exemption for m, if any.
func (c *Classifier) Classify(m vcs.CommitMetadata) (Exemption, bool) {
	for _, r := range c.rules {
		if r.Match(m) {
			return Exemption{Rule: r.Name, Reason: r.Reason}, true
		}
	}
	return Exemption{}, false
}
