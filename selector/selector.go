// Package selector implements the scenario filter grammar applied before
// scenarios reach the engine.
//
// One selector string is a comma-separated list of terms that must all match
// (AND). Each term is [!]*[type:]value where type is tag, name, or file and
// defaults to name. A leading ! negates the term and repeated ! toggles, so
// !!staging equals staging. Matching is case-insensitive substring
// containment. Multiple selector strings combine as OR: a scenario is kept
// when any selector matches it.
//
//	name:checkout          scenarios whose name contains "checkout"
//	tag:smoke,!tag:flaky   tagged smoke and not tagged flaky
//	file:payments          registered from a file path containing "payments"
package selector

import (
	"fmt"
	"strings"

	"github.com/drover-run/drover/types"
)

// Kind identifies which scenario attribute a term matches against.
type Kind string

const (
	KindName Kind = "name"
	KindTag  Kind = "tag"
	KindFile Kind = "file"
)

// Term is one [!]*[type:]value atom of a selector.
type Term struct {
	Kind    Kind
	Value   string
	Negated bool
}

// Selector is one parsed selector string: a conjunction of terms.
type Selector struct {
	raw   string
	terms []Term
}

// String returns the selector as originally written.
func (s Selector) String() string {
	return s.raw
}

// Terms returns the parsed terms in source order.
func (s Selector) Terms() []Term {
	return s.terms
}

// Parse parses one selector string. Commas separate terms that must all
// match. An empty term value is a usage error.
func Parse(raw string) (Selector, error) {
	sel := Selector{raw: raw}
	for _, part := range strings.Split(raw, ",") {
		term, err := parseTerm(part, raw)
		if err != nil {
			return Selector{}, err
		}
		sel.terms = append(sel.terms, term)
	}
	return sel, nil
}

// ParseAll parses every selector string. An empty input yields an empty
// selector set, which matches everything.
func ParseAll(raws []string) ([]Selector, error) {
	var sels []Selector
	for _, raw := range raws {
		sel, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

func parseTerm(part, raw string) (Term, error) {
	part = strings.TrimSpace(part)

	term := Term{Kind: KindName}
	for strings.HasPrefix(part, "!") {
		term.Negated = !term.Negated
		part = strings.TrimSpace(strings.TrimPrefix(part, "!"))
	}

	if idx := strings.Index(part, ":"); idx >= 0 {
		prefix := strings.ToLower(strings.TrimSpace(part[:idx]))
		switch prefix {
		case "tag":
			term.Kind = KindTag
		case "name":
			term.Kind = KindName
		case "file":
			term.Kind = KindFile
		default:
			return Term{}, fmt.Errorf("unknown selector type %q in %q, want tag, name, or file", prefix, raw)
		}
		part = part[idx+1:]
	}

	term.Value = strings.ToLower(strings.TrimSpace(part))
	if term.Value == "" {
		return Term{}, fmt.Errorf("selector %q has an empty value", raw)
	}
	return term, nil
}

// Matches reports whether every term of the selector matches def.
func (s Selector) Matches(def *types.ScenarioDef) bool {
	for _, term := range s.terms {
		if !term.matches(def) {
			return false
		}
	}
	return true
}

func (t Term) matches(def *types.ScenarioDef) bool {
	var hit bool
	switch t.Kind {
	case KindTag:
		for _, tag := range def.Tags {
			if strings.Contains(strings.ToLower(tag), t.Value) {
				hit = true
				break
			}
		}
	case KindFile:
		hit = strings.Contains(strings.ToLower(def.Location.File), t.Value)
	default:
		hit = strings.Contains(strings.ToLower(def.Name), t.Value)
	}
	if t.Negated {
		return !hit
	}
	return hit
}

// MatchesAny reports whether any selector matches def. An empty selector
// set matches every scenario.
func MatchesAny(def *types.ScenarioDef, sels []Selector) bool {
	if len(sels) == 0 {
		return true
	}
	for _, sel := range sels {
		if sel.Matches(def) {
			return true
		}
	}
	return false
}

// Filter returns the scenarios matching any selector, preserving input
// order. With no selectors the input is returned as is.
func Filter(defs []*types.ScenarioDef, sels []Selector) []*types.ScenarioDef {
	if len(sels) == 0 {
		return defs
	}
	var out []*types.ScenarioDef
	for _, def := range defs {
		if MatchesAny(def, sels) {
			out = append(out, def)
		}
	}
	return out
}
