package canopy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

type combinator uint8

const (
	combinatorNone       combinator = iota // leftmost compound
	combinatorDescendant                   // whitespace
	combinatorChild                        // >
)

// compoundSelector is a run of simple selectors with no combinator between
// them, such as button.primary:hover.
type compoundSelector struct {
	element   string // empty or "*" matches any element
	id        string
	classes   []string
	pseudo    PseudoClass
	root      bool
	combining combinator // how this compound relates to the one on its left
}

func (c *compoundSelector) String() string {
	var b strings.Builder
	b.WriteString(c.element)
	if c.id != "" {
		b.WriteString("#" + c.id)
	}
	for _, cl := range c.classes {
		b.WriteString("." + cl)
	}
	if c.root {
		b.WriteString(":root")
	}
	for i, name := range pseudoClassList {
		if c.pseudo&(1<<i) != 0 {
			b.WriteString(":" + name)
		}
	}
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}

// Selector is a complex selector: compounds joined by descendant or child
// combinators.
type Selector struct {
	parts []compoundSelector
}

func (s Selector) String() string {
	var b strings.Builder
	for i := range s.parts {
		switch s.parts[i].combining {
		case combinatorDescendant:
			b.WriteString(" ")
		case combinatorChild:
			b.WriteString(" > ")
		}
		b.WriteString(s.parts[i].String())
	}
	return b.String()
}

// Specificity returns ids<<16 | (classes+pseudo-classes)<<8 | types with each
// count capped at 255.
func (s Selector) Specificity() uint32 {
	var ids, classes, types uint32
	for i := range s.parts {
		p := &s.parts[i]
		if p.id != "" {
			ids++
		}
		classes += uint32(len(p.classes))
		for v := p.pseudo; v != 0; v &= v - 1 {
			classes++
		}
		if p.root {
			classes++
		}
		if p.element != "" && p.element != "*" {
			types++
		}
	}
	return min(ids, 255)<<16 | min(classes, 255)<<8 | min(types, 255)
}

// Matches reports whether e matches the selector. Compounds are matched right
// to left.
func (s Selector) Matches(style *Style, tree *Tree, e Entity) bool {
	if len(s.parts) == 0 {
		return false
	}
	return s.matchFrom(len(s.parts)-1, style, tree, e)
}

func (s Selector) matchFrom(i int, style *Style, tree *Tree, e Entity) bool {
	p := &s.parts[i]
	if !p.matches(style, e) {
		return false
	}
	if i == 0 {
		return true
	}
	switch p.combining {
	case combinatorChild:
		parent := tree.Parent(e)
		return !parent.IsNull() && s.matchFrom(i-1, style, tree, parent)
	case combinatorDescendant:
		for a := range tree.Ancestors(e) {
			if s.matchFrom(i-1, style, tree, a) {
				return true
			}
		}
	}
	return false
}

func (c *compoundSelector) matches(style *Style, e Entity) bool {
	if c.root && e != RootEntity {
		return false
	}
	if c.element != "" && c.element != "*" {
		if name, _ := style.Elements.Get(e); name != c.element {
			return false
		}
	}
	if c.id != "" {
		if id, _ := style.IDs.Get(e); id != c.id {
			return false
		}
	}
	for _, cl := range c.classes {
		if !style.hasClass(e, cl) {
			return false
		}
	}
	return style.pseudoClasses(e)&c.pseudo == c.pseudo
}

var errEmptySelector = errors.New("empty selector")

// parseSelectorList parses the selector tokens of a ruleset. Any unsupported
// construct invalidates the whole list.
func parseSelectorList(toks []css.Token) ([]Selector, error) {
	var (
		list    []Selector
		cur     Selector
		part    compoundSelector
		started bool
		pending = combinatorNone
	)

	flush := func() error {
		if !started {
			if pending != combinatorNone && pending != combinatorDescendant {
				return errors.New("dangling combinator")
			}
			return nil
		}
		part.combining = pending
		if len(cur.parts) == 0 {
			part.combining = combinatorNone
		}
		cur.parts = append(cur.parts, part)
		part = compoundSelector{}
		started = false
		pending = combinatorNone
		return nil
	}
	endSelector := func() error {
		if err := flush(); err != nil {
			return err
		}
		if len(cur.parts) == 0 {
			return errEmptySelector
		}
		list = append(list, cur)
		cur = Selector{}
		return nil
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.TokenType {
		case css.IdentToken:
			if started {
				return nil, fmt.Errorf("unexpected element name %q", t.Data)
			}
			part.element = strings.ToLower(string(t.Data))
			started = true
		case css.HashToken:
			if part.id != "" {
				return nil, errors.New("two ids in one compound")
			}
			part.id = string(t.Data[1:])
			started = true
		case css.DelimToken:
			switch t.Data[0] {
			case '*':
				if started {
					return nil, errors.New("unexpected *")
				}
				part.element = "*"
				started = true
			case '.':
				if i+1 >= len(toks) || toks[i+1].TokenType != css.IdentToken {
					return nil, errors.New("expected class name after .")
				}
				i++
				part.classes = append(part.classes, string(toks[i].Data))
				started = true
			case '>':
				if err := flush(); err != nil {
					return nil, err
				}
				if len(cur.parts) == 0 {
					return nil, errors.New("child combinator without left side")
				}
				pending = combinatorChild
			default:
				return nil, fmt.Errorf("unsupported combinator %q", t.Data)
			}
		case css.ColonToken:
			if i+1 >= len(toks) || toks[i+1].TokenType != css.IdentToken {
				return nil, errors.New("unsupported pseudo selector")
			}
			i++
			name := strings.ToLower(string(toks[i].Data))
			if name == "root" {
				part.root = true
			} else if p, ok := pseudoClassNames[name]; ok {
				part.pseudo |= p
			} else {
				return nil, fmt.Errorf("unknown pseudo-class :%s", name)
			}
			started = true
		case css.WhitespaceToken:
			if started {
				if err := flush(); err != nil {
					return nil, err
				}
				pending = combinatorDescendant
			}
		case css.CommaToken:
			if err := endSelector(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported selector token %q", t.Data)
		}
	}
	if err := endSelector(); err != nil {
		return nil, err
	}
	return list, nil
}
