package cmd

import (
	"bytes"
	"fmt"

	"github.com/keurnel/gramfuzz/grammar"
)

// buildMarkupGrammar constructs a small nested-tag grammar exercising
// tracked identifiers, Reference back-patching, ScopedRef lookup, scope push/pop,
// Star/Choice recursion, Regex character classes, and plain Text/Concat.
func buildMarkupGrammar() *grammar.Grammar {
	g := grammar.NewGrammar()

	attrValue := g.NameToSymbol("attr-value", 0)
	attrValue.SetTracked(5)
	must(attrValue.DefineRegex())
	must(attrValue.AddRegexPart([]byte("abcdefghijklmnopqrstuvwxyz"), 5, 5))

	word := g.NameToSymbol("word", 0)
	must(word.DefineRegex())
	must(word.AddRegexPart([]byte("abcdefghijklmnopqrstuvwxyz"), 2, 8))

	openTag := g.NameToSymbol("open-tag", 0)
	must(openTag.DefineConcat())
	must(openTag.AddConcat(g.TextToSymbol([]byte(`<tag id="`), 0)))
	must(openTag.AddConcat(attrValue))
	must(openTag.AddConcat(g.TextToSymbol([]byte(`">`), 0)))

	closeTag := g.TextToSymbol([]byte("</tag>"), 0)

	body := g.NameToSymbol("body", 0)
	must(body.DefineChoice())
	three := 3.0
	must(body.AddChoice(word, &three))

	element := g.NameToSymbol("element", 0)
	must(element.DefineConcat())
	must(element.AddConcat(openTag))
	bodyStar := g.NewSymbol("", 0)
	must(bodyStar.DefineStar(body, 3))
	must(element.AddConcat(bodyStar))
	must(element.AddConcat(closeTag))

	one := 1.0
	must(body.AddChoice(element, &one))

	scopedRef := g.NewSymbol("", 0)
	must(scopedRef.DefineScopedReference(attrValue))

	backref := g.NewSymbol("", 0)
	must(backref.DefineReference(attrValue))

	braceOpen, err := g.Get("{")
	if err != nil {
		panic(err)
	}
	braceClose, err := g.Get("}")
	if err != nil {
		panic(err)
	}

	root := g.NameToSymbol("root", 0)
	must(root.DefineConcat())
	must(root.AddConcat(braceOpen))
	must(root.AddConcat(element))
	must(root.AddConcat(scopedRef))
	must(root.AddConcat(braceClose))
	must(root.AddConcat(g.TextToSymbol([]byte(" ref="), 0)))
	must(root.AddConcat(backref))

	return g
}

// buildArithmeticGrammar constructs a grammar exercising RndInt/RndFlt
// numerics, a Function callback, and Foreign delegation into a peer
// grammar (the markup grammar above).
func buildArithmeticGrammar(peer *grammar.Grammar) *grammar.Grammar {
	g := grammar.NewGrammar()

	i := g.NewSymbol("count", 0)
	must(i.DefineRndInt(0, 100))

	f := g.NewSymbol("ratio", 0)
	must(f.DefineRndFlt(0.0, 1.0))

	shoutArg := g.NewSymbol("", 0)
	must(shoutArg.DefineText([]byte("hello")))

	shout := g.NewSymbol("shout", 0)
	must(shout.DefineFunction(uppercase, []*grammar.Symbol{shoutArg}))

	nested := g.NewSymbol("nested", 0)
	must(nested.DefineForeign(peer, "root"))

	root := g.NameToSymbol("root", 0)
	must(root.DefineConcat())
	must(root.AddConcat(i))
	must(root.AddConcat(g.TextToSymbol([]byte(" "), 0)))
	must(root.AddConcat(f))
	must(root.AddConcat(g.TextToSymbol([]byte(" "), 0)))
	must(root.AddConcat(shout))
	must(root.AddConcat(g.TextToSymbol([]byte(" "), 0)))
	must(root.AddConcat(nested))

	return g
}

// uppercase is the Callable backing the arithmetic grammar's "shout"
// Function symbol.
func uppercase(args [][]byte) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("shout: expected exactly one argument, got %d", len(args))
	}
	return bytes.ToUpper(args[0]), nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
