// Package highlight splits source code into spans tagged with semantic
// token classes.
package highlight

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Class is the semantic role of a highlighted span.
type Class uint8

const (
	Plain Class = iota
	Keyword
	Name
	Builtin
	Function
	Type
	String
	Number
	Comment
	Operator
	Punctuation
	Preprocessor
	Error
	Inserted
	Deleted

	// NumClasses is the number of classes, for sizing lookup tables.
	NumClasses
)

var classNames = [NumClasses]string{
	"plain", "keyword", "name", "builtin", "function", "type", "string",
	"number", "comment", "operator", "punctuation", "preprocessor", "error",
	"inserted", "deleted",
}

func (c Class) String() string {
	if c < NumClasses {
		return classNames[c]
	}
	return "class?"
}

// Span is a slice of the highlighted input and its class.
type Span struct {
	Text  string
	Class Class
}

// Token is one classified piece produced by a Tokenizer.
type Token struct {
	Text  string
	Class Class
}

// Tokenizer classifies code in a language. ok is false when the language is
// unknown.
type Tokenizer interface {
	Tokenize(code, language string) (tokens iter.Seq[Token], ok bool)
}

// Highlighter adapts a Tokenizer so that its output always partitions the
// input exactly.
type Highlighter struct {
	tokenizer Tokenizer
}

// New returns a Highlighter backed by t. A nil t yields plain spans only.
func New(t Tokenizer) *Highlighter {
	return &Highlighter{tokenizer: t}
}

// Default returns a Highlighter backed by chroma.
func Default() *Highlighter {
	return New(NewChromaTokenizer())
}

// Highlight yields spans whose texts concatenate to exactly code. Empty code
// yields nothing; an empty or unknown language yields one Plain span. Any
// divergence between the tokenizer output and the input is repaired by
// emitting the remainder as Plain.
func (h *Highlighter) Highlight(code, language string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if code == "" {
			return
		}
		lang := NormalizeLanguage(language)
		if lang == "" || h == nil || h.tokenizer == nil {
			yield(Span{Text: code, Class: Plain})
			return
		}
		tokens, ok := h.tokenizer.Tokenize(code, lang)
		if !ok || tokens == nil {
			yield(Span{Text: code, Class: Plain})
			return
		}
		rest := code
		var pending Span
		flush := func() bool {
			if pending.Text == "" {
				return true
			}
			span := pending
			pending = Span{}
			return yield(span)
		}
		push := func(text string, class Class) bool {
			if pending.Text != "" && pending.Class == class {
				pending.Text = code[len(code)-len(rest)-len(pending.Text)-len(text) : len(code)-len(rest)]
				return true
			}
			if !flush() {
				return false
			}
			pending = Span{Text: text, Class: class}
			return true
		}
		for tok := range tokens {
			if rest == "" {
				break
			}
			if tok.Text == "" {
				continue
			}
			if strings.HasPrefix(rest, tok.Text) && (len(tok.Text) == len(rest) || utf8.RuneStart(rest[len(tok.Text)])) {
				text := rest[:len(tok.Text)]
				rest = rest[len(tok.Text):]
				if !push(text, tok.Class) {
					return
				}
				continue
			}
			n := commonPrefix(rest, tok.Text)
			if n > 0 {
				text := rest[:n]
				rest = rest[n:]
				if !push(text, tok.Class) {
					return
				}
			}
			break
		}
		if !flush() {
			return
		}
		if rest != "" {
			yield(Span{Text: rest, Class: Plain})
		}
	}
}

// commonPrefix returns the length of the shared prefix of a and b, shortened
// to a character boundary of a.
func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	for n > 0 && n < len(a) && !utf8.RuneStart(a[n]) {
		n--
	}
	return n
}

// NormalizeLanguage extracts the language name from a fenced code info
// string such as "go", "{.python}" or "rust,ignore".
func NormalizeLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	lang := fields[0]
	lang = strings.TrimPrefix(lang, "{")
	lang = strings.TrimPrefix(lang, ".")
	lang = strings.TrimSuffix(lang, "}")
	if i := strings.IndexByte(lang, ','); i >= 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}
