// SPDX-License-Identifier: AGPL-3.0-or-later

// Package policy decides whether a commit is checked at all, and which
// checkpatch message types are ignored when it is.
package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMarkerPath is present at the root of Google prodkernel trees.
const DefaultMarkerPath = "gconfigs"

// Policy is the static part of the suppression policy. It can be loaded
// from a YAML file; unset fields take the defaults.
type Policy struct {
	Maintainers []string   `yaml:"maintainers"`
	Markers     []string   `yaml:"markers"`
	Ignore      []string   `yaml:"ignore"`
	Restricted  Restricted `yaml:"restricted"`
}

// Restricted is the extra layer applied when Marker exists in the working directory.
type Restricted struct {
	Marker string   `yaml:"marker"`
	Ignore []string `yaml:"ignore"`
}

// Default returns the built-in policy.
func Default() *Policy {
	return &Policy{
		// Release commits are not signed off.
		Maintainers: []string{"Linus Torvalds"},
		// b4 prep keeps its cover letter in a commit with this trailer section.
		Markers: []string{"\n--- b4-submit-tracking ---\n"},
		Ignore: []string{
			"FILE_PATH_CHANGES",
			"AVOID_BUG",
			"VSPRINTF_SPECIFIER_PX",
			"COMMIT_LOG_LONG_LINE",
			"MACRO_ARG_UNUSED",
			"CONFIG_DESCRIPTION",
			"COMMIT_MESSAGE",
			"LOGGING_CONTINUATION",
			"COMPLEX_MACRO",
			"LONG_LINE",
			"NEW_TYPEDEFS",
			"EXPORT_SYMBOL",
			"EMBEDDED_FUNCTION_NAME",
			// b4 prep --check catches this before sending.
			"GERRIT_CHANGE_ID",
		},
		Restricted: Restricted{
			Marker: DefaultMarkerPath,
			Ignore: []string{"GERRIT_CHANGE_ID", "GIT_COMMIT_ID", "MISSING_SIGN_OFF"},
		},
	}
}

// Load reads a policy file and fills unset fields from Default.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --policy flag
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}
	p.fillDefaults()

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy %s: %w", path, err)
	}
	return &p, nil
}

// LoadOptional is Load, except a missing file yields the default policy.
func LoadOptional(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func (p *Policy) fillDefaults() {
	d := Default()
	if p.Maintainers == nil {
		p.Maintainers = d.Maintainers
	}
	if p.Markers == nil {
		p.Markers = d.Markers
	}
	if p.Ignore == nil {
		p.Ignore = d.Ignore
	}
	if p.Restricted.Marker == "" {
		p.Restricted.Marker = d.Restricted.Marker
	}
	if p.Restricted.Ignore == nil {
		p.Restricted.Ignore = d.Restricted.Ignore
	}
}

func (p *Policy) Validate() error {
	for i, m := range p.Maintainers {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("maintainer at index %d is empty", i)
		}
	}
	for i, m := range p.Markers {
		if m == "" {
			return fmt.Errorf("marker at index %d is empty", i)
		}
	}
	if err := validateTypes("ignore", p.Ignore); err != nil {
		return err
	}
	if err := validateTypes("restricted.ignore", p.Restricted.Ignore); err != nil {
		return err
	}
	if filepath.IsAbs(p.Restricted.Marker) {
		return fmt.Errorf("restricted.marker must be relative: %s", p.Restricted.Marker)
	}
	return nil
}

// validateTypes rejects entries that would corrupt the comma-joined --ignore argument.
func validateTypes(field string, types []string) error {
	for i, t := range types {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%s entry at index %d is empty", field, i)
		}
		if strings.ContainsAny(t, ", \t\n") {
			return fmt.Errorf("%s entry %q must not contain commas or whitespace", field, t)
		}
	}
	return nil
}

// InRestrictedEnv reports whether the restricted-environment marker exists under dir.
func (p *Policy) InRestrictedEnv(dir string) bool {
	if p.Restricted.Marker == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, p.Restricted.Marker))
	return err == nil
}
