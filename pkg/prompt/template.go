// Package prompt renders the prompt templates sent to language and image
// models.
package prompt

import (
	"fmt"
	"strings"
)

// Template names shipped with shelf.
const (
	ChatbotRAG         = "chatbot-rag-prompt.st"
	ProductDescription = "product-description.st"
	ProductImage       = "product-image.st"
)

// Template is a text with {name} placeholders. A backslash before an
// opening brace emits the brace literally. Braces that do not enclose a
// valid identifier are kept as-is.
type Template struct {
	Name string
	text string
}

// New creates a template from text.
func New(name, text string) *Template {
	return &Template{Name: name, text: text}
}

// Text returns the raw template text.
func (t *Template) Text() string {
	return t.text
}

// Variables returns the placeholder names in order of first appearance.
func (t *Template) Variables() []string {
	var names []string
	seen := map[string]bool{}
	t.scan(func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}, nil)
	return names
}

// Render substitutes every placeholder from vars. A placeholder without a
// value is an ErrMissingVariable error; unused vars are ignored.
func (t *Template) Render(vars map[string]string) (string, error) {
	var (
		b       strings.Builder
		missing []string
	)
	b.Grow(len(t.text))

	t.scan(func(name string) {
		val, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return
		}
		b.WriteString(val)
	}, func(literal string) {
		b.WriteString(literal)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w in %s: %s", ErrMissingVariable, t.Name, strings.Join(missing, ", "))
	}
	return b.String(), nil
}

// scan walks the text calling onVar for each placeholder and onText for
// literal runs. onText may be nil.
func (t *Template) scan(onVar func(name string), onText func(literal string)) {
	emit := func(s string) {
		if onText != nil && s != "" {
			onText(s)
		}
	}

	s := t.text
	for len(s) > 0 {
		i := strings.IndexAny(s, `\{`)
		if i < 0 {
			emit(s)
			return
		}
		emit(s[:i])
		s = s[i:]

		if s[0] == '\\' {
			if len(s) > 1 && s[1] == '{' {
				emit("{")
				s = s[2:]
				continue
			}
			emit(`\`)
			s = s[1:]
			continue
		}

		end := strings.IndexByte(s, '}')
		if end < 0 || !isIdentifier(s[1:end]) {
			emit("{")
			s = s[1:]
			continue
		}
		onVar(s[1:end])
		s = s[end+1:]
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
