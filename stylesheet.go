package canopy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Diagnostic describes a stylesheet problem that was skipped.
type Diagnostic struct {
	Line     int
	Selector string
	Property string
	Message  string
}

func (d Diagnostic) String() string {
	switch {
	case d.Property != "":
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Property, d.Message)
	case d.Selector != "":
		return fmt.Sprintf("line %d: selector %q: %s", d.Line, d.Selector, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// StyleRule is one parsed ruleset. Its declarations live in the style
// channels keyed by ID.
type StyleRule struct {
	ID          RuleID
	Specificity uint32
	Selectors   []Selector
	Line        int
}

// Matches reports whether any selector of the rule matches e.
func (r *StyleRule) Matches(style *Style, tree *Tree, e Entity) bool {
	for _, sel := range r.Selectors {
		if sel.Matches(style, tree, e) {
			return true
		}
	}
	return false
}

func (r *StyleRule) String() string {
	parts := make([]string, len(r.Selectors))
	for i, sel := range r.Selectors {
		parts[i] = sel.String()
	}
	return strings.Join(parts, ", ")
}

func (s *Style) addRule(sels []Selector, line int) *StyleRule {
	r := &StyleRule{ID: s.nextRule, Selectors: sels, Line: line}
	s.nextRule++
	for _, sel := range sels {
		r.Specificity = max(r.Specificity, sel.Specificity())
	}
	s.rules = append(s.rules, r)
	s.needsRestyle = true
	return r
}

// ParseTheme parses a stylesheet and adds its rules after the existing ones.
// Malformed rules and declarations are skipped; the problems are returned
// and kept in Diagnostics.
func (s *Style) ParseTheme(src string) []Diagnostic {
	in := []byte(src)
	p := css.NewParser(parse.NewInputBytes(in), false)
	lineAt := func() int {
		return 1 + bytes.Count(in[:min(p.Offset(), len(in))], []byte{'\n'})
	}

	var (
		diags   []Diagnostic
		rule    *StyleRule
		atDepth int
	)
	report := func(d Diagnostic) {
		s.log.Debug("stylesheet diagnostic",
			zap.Int("line", d.Line),
			zap.String("selector", d.Selector),
			zap.String("property", d.Property),
			zap.String("message", d.Message))
		diags = append(diags, d)
	}

loop:
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) {
				break loop
			}
			d := Diagnostic{Line: lineAt(), Message: err.Error()}
			var perr *parse.Error
			if errors.As(err, &perr) {
				d.Line, d.Message = perr.Line, perr.Message
			}
			report(d)
		case css.BeginAtRuleGrammar:
			atDepth++
			s.log.Debug("skipping at-rule", zap.String("rule", string(data)))
		case css.EndAtRuleGrammar:
			atDepth--
		case css.BeginRulesetGrammar:
			rule = nil
			if atDepth > 0 {
				continue
			}
			sels, err := parseSelectorList(p.Values())
			if err != nil {
				report(Diagnostic{Line: lineAt(), Selector: tokenText(p.Values()), Message: err.Error()})
				continue
			}
			rule = s.addRule(sels, lineAt())
		case css.DeclarationGrammar:
			if rule == nil {
				continue
			}
			name := string(data)
			if err := s.bindDeclaration(ruleTarget(rule.ID), name, p.Values()); err != nil {
				report(Diagnostic{Line: lineAt(), Property: name, Message: err.Error()})
			}
		case css.CustomPropertyGrammar:
			if rule != nil {
				report(Diagnostic{Line: lineAt(), Property: string(data), Message: "custom properties are not supported"})
			}
		case css.EndRulesetGrammar:
			rule = nil
		}
	}

	s.diagnostics = append(s.diagnostics, diags...)
	return diags
}

// parseInline parses a single "property: value" declaration into e's inline
// values.
func (s *Style) parseInline(e Entity, property, value string) error {
	decl := property + ":" + value
	p := css.NewParser(parse.NewInputString(decl), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.DeclarationGrammar:
			return s.bindDeclaration(inlineTarget(e), string(data), p.Values())
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return errMissingValue
		}
	}
}
