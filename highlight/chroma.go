package highlight

import (
	"iter"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// ChromaTokenizer classifies code with chroma lexers. Lexers are looked up
// by name, then by file extension, and cached per language.
type ChromaTokenizer struct {
	mu    sync.RWMutex
	cache map[string]chroma.Lexer
}

// NewChromaTokenizer returns a tokenizer with an empty lexer cache.
func NewChromaTokenizer() *ChromaTokenizer {
	return &ChromaTokenizer{cache: make(map[string]chroma.Lexer)}
}

func (c *ChromaTokenizer) lexer(language string) chroma.Lexer {
	c.mu.RLock()
	lexer, ok := c.cache[language]
	c.mu.RUnlock()
	if ok {
		return lexer
	}
	lexer = lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Match("file." + language)
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string]chroma.Lexer)
	}
	c.cache[language] = lexer
	c.mu.Unlock()
	return lexer
}

// Tokenize implements Tokenizer.
func (c *ChromaTokenizer) Tokenize(code, language string) (iter.Seq[Token], bool) {
	lexer := c.lexer(language)
	if lexer == nil {
		return nil, false
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, false
	}
	return func(yield func(Token) bool) {
		for tok := it(); tok != chroma.EOF; tok = it() {
			if !yield(Token{Text: tok.Value, Class: classify(tok.Type)}) {
				return
			}
		}
	}, true
}

func classify(t chroma.TokenType) Class {
	switch {
	case t == chroma.Error:
		return Error
	case t == chroma.GenericInserted:
		return Inserted
	case t == chroma.GenericDeleted:
		return Deleted
	case t == chroma.KeywordType, t == chroma.NameClass:
		return Type
	case t.InCategory(chroma.Keyword):
		return Keyword
	case t == chroma.NameBuiltin, t == chroma.NameBuiltinPseudo:
		return Builtin
	case t == chroma.NameFunction, t == chroma.NameFunctionMagic:
		return Function
	case t == chroma.NameTag:
		return Keyword
	case t.InCategory(chroma.Name):
		return Name
	case t.InSubCategory(chroma.LiteralNumber):
		return Number
	case t.InCategory(chroma.Literal):
		return String
	case t.InSubCategory(chroma.CommentPreproc):
		return Preprocessor
	case t.InCategory(chroma.Comment):
		return Comment
	case t.InCategory(chroma.Operator):
		return Operator
	case t.InCategory(chroma.Punctuation):
		return Punctuation
	default:
		return Plain
	}
}
