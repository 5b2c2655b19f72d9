package kle

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Raw data is what the editor shows in its "Raw data" tab: the rows of
// the JSON document without the enclosing brackets, and object keys that
// are usually unquoted:
//
//	{name:"Numpad"},
//	["Num Lock","/","*","-"],
//	[{w:2},"0","."]

var rawLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}\[\],:]`},
})

var rawParser = participle.MustBuild[rawDocument](
	participle.Lexer(rawLexer),
	participle.Unquote("String"),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// Separators are optional so that trailing commas need no special case.
type rawDocument struct {
	Values []*rawValue `parser:"( @@ \",\"? )*"`
}

type rawValue struct {
	Object *rawObject `parser:"  @@"`
	Array  *rawArray  `parser:"| @@"`
	String *string    `parser:"| @String"`
	Number *float64   `parser:"| @Number"`
	Bool   *rawBool   `parser:"| @( \"true\" | \"false\" )"`
	Null   bool       `parser:"| @\"null\""`
}

type rawObject struct {
	Fields []*rawField `parser:"\"{\" ( @@ \",\"? )* \"}\""`
}

type rawField struct {
	Key   string    `parser:"@( Ident | String ) \":\""`
	Value *rawValue `parser:"@@"`
}

type rawArray struct {
	Items []*rawValue `parser:"\"[\" ( @@ \",\"? )* \"]\""`
}

type rawBool bool

func (b *rawBool) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

func decodeRaw(data []byte) ([]any, error) {
	doc, err := rawParser.ParseBytes("", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}

	elements := make([]any, len(doc.Values))
	for i, v := range doc.Values {
		elements[i] = v.value()
	}

	// A complete JSON document pasted as raw data is one array of rows
	if len(elements) == 1 {
		if outer, ok := elements[0].([]any); ok && containsArray(outer) {
			return outer, nil
		}
	}
	return elements, nil
}

// containsArray reports whether any item is itself an array. Rows never
// nest arrays, so this identifies a wrapped document.
func containsArray(items []any) bool {
	for _, item := range items {
		if _, ok := item.([]any); ok {
			return true
		}
	}
	return false
}

func (v *rawValue) value() any {
	switch {
	case v.Object != nil:
		m := make(map[string]any, len(v.Object.Fields))
		for _, f := range v.Object.Fields {
			m[f.Key] = f.Value.value()
		}
		return m
	case v.Array != nil:
		items := make([]any, len(v.Array.Items))
		for i, item := range v.Array.Items {
			items[i] = item.value()
		}
		return items
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Bool != nil:
		return bool(*v.Bool)
	}
	return nil
}
