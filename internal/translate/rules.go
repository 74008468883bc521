package translate

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// MAPPING RULES
// =============================================================================

// ElementMapping projects one source value onto one target position. Paths
// are "E" or "E.C", 1-based. A mapping without a source writes Constant.
type ElementMapping struct {
	Source     string      `yaml:"source,omitempty"`
	Target     string      `yaml:"target"`
	Constant   string      `yaml:"constant,omitempty"`
	Transforms []Transform `yaml:"transforms,omitempty"`

	source edi.Path
	target edi.Path
}

// Rule maps one source segment to one target segment.
type Rule struct {
	SourceDialect edi.Dialect `yaml:"source_dialect"`
	TargetDialect edi.Dialect `yaml:"target_dialect"`
	SourceSegment string      `yaml:"source"`
	TargetSegment string      `yaml:"target"`

	// Merge folds the mapped values into the most recent target segment with
	// the same id instead of emitting a new one.
	Merge bool `yaml:"merge,omitempty"`

	Elements []ElementMapping `yaml:"elements"`
}

// compile validates the rule and resolves its paths.
func (r *Rule) compile() error {
	if r.SourceDialect == "" || r.TargetDialect == "" {
		return fmt.Errorf("rule %s -> %s: source and target dialect are required", r.SourceSegment, r.TargetSegment)
	}
	if r.SourceDialect == r.TargetDialect {
		return fmt.Errorf("rule %s -> %s: source and target dialect are both %s", r.SourceSegment, r.TargetSegment, r.SourceDialect)
	}
	if r.SourceSegment == "" || r.TargetSegment == "" {
		return fmt.Errorf("rule must name a source and a target segment")
	}
	r.SourceSegment = strings.ToUpper(strings.TrimSpace(r.SourceSegment))
	r.TargetSegment = strings.ToUpper(strings.TrimSpace(r.TargetSegment))

	for i := range r.Elements {
		m := &r.Elements[i]
		var err error
		if m.target, err = edi.ParsePath(m.Target); err != nil {
			return fmt.Errorf("rule %s -> %s: %w", r.SourceSegment, r.TargetSegment, err)
		}
		if m.Source != "" {
			if m.source, err = edi.ParsePath(m.Source); err != nil {
				return fmt.Errorf("rule %s -> %s: %w", r.SourceSegment, r.TargetSegment, err)
			}
		}
		for _, t := range m.Transforms {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("rule %s -> %s element %s: %w", r.SourceSegment, r.TargetSegment, m.Target, err)
			}
		}
	}
	return nil
}

// apply projects a source segment. It returns nil when no source value
// reached the target.
func (r *Rule) apply(src *edi.Segment) (*edi.Segment, error) {
	out := &edi.Segment{ID: r.TargetSegment}
	mapped := false
	for _, m := range r.Elements {
		value := m.Constant
		if m.Source != "" {
			value = src.Get(m.source)
		}
		value, err := ApplyChain(value, m.Transforms)
		if err != nil {
			return nil, err
		}
		if value == "" {
			continue
		}
		if m.Source != "" {
			mapped = true
		}
		out.Set(m.target, value)
	}
	if !mapped {
		return nil, nil
	}
	out.TrimTrailing()
	return out, nil
}

// =============================================================================
// RULE SET
// =============================================================================

type ruleKey struct {
	source  edi.Dialect
	segment string
	target  edi.Dialect
}

type transactionKey struct {
	source edi.Dialect
	id     string
	target edi.Dialect
}

// RuleSet indexes rules by (sourceDialect, sourceSegment, targetDialect) and
// holds the transaction cross-reference. It is read-only once built.
type RuleSet struct {
	rules        map[ruleKey][]*Rule
	transactions map[transactionKey]string
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		rules:        make(map[ruleKey][]*Rule),
		transactions: make(map[transactionKey]string),
	}
}

// Add compiles and registers rules. Rules sharing a source key are applied
// in the order they were added.
func (rs *RuleSet) Add(rules ...Rule) error {
	for i := range rules {
		r := rules[i]
		if err := r.compile(); err != nil {
			return err
		}
		k := ruleKey{source: r.SourceDialect, segment: r.SourceSegment, target: r.TargetDialect}
		rs.rules[k] = append(rs.rules[k], &r)
	}
	return nil
}

// Replace drops every rule for the given source segments before adding the
// new ones, so loaded files can override built-in mappings.
func (rs *RuleSet) Replace(rules ...Rule) error {
	for _, r := range rules {
		k := ruleKey{
			source:  r.SourceDialect,
			segment: strings.ToUpper(strings.TrimSpace(r.SourceSegment)),
			target:  r.TargetDialect,
		}
		delete(rs.rules, k)
	}
	return rs.Add(rules...)
}

// CrossReference registers a transaction type pair in both directions.
func (rs *RuleSet) CrossReference(source edi.Dialect, sourceID string, target edi.Dialect, targetID string) {
	rs.transactions[transactionKey{source: source, id: sourceID, target: target}] = targetID
	if _, ok := rs.transactions[transactionKey{source: target, id: targetID, target: source}]; !ok {
		rs.transactions[transactionKey{source: target, id: targetID, target: source}] = sourceID
	}
}

// Lookup returns the rules for a source segment.
func (rs *RuleSet) Lookup(source edi.Dialect, segment string, target edi.Dialect) []*Rule {
	return rs.rules[ruleKey{source: source, segment: segment, target: target}]
}

// TargetTransaction returns the cross-referenced transaction type.
func (rs *RuleSet) TargetTransaction(source edi.Dialect, id string, target edi.Dialect) (string, bool) {
	t, ok := rs.transactions[transactionKey{source: source, id: id, target: target}]
	return t, ok
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int {
	n := 0
	for _, r := range rs.rules {
		n += len(r)
	}
	return n
}

// Clone returns a copy that can be extended without touching the receiver.
func (rs *RuleSet) Clone() *RuleSet {
	out := NewRuleSet()
	for k, v := range rs.rules {
		out.rules[k] = append([]*Rule(nil), v...)
	}
	for k, v := range rs.transactions {
		out.transactions[k] = v
	}
	return out
}
