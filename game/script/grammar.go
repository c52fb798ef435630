package script

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[{};]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// File is the syntax tree of a script
type File struct {
	Items []*Item `parser:"@@*"`
}

// Item is a top-level procedure definition or statement
type Item struct {
	Define *Define    `parser:"  @@"`
	Stmt   *Statement `parser:"| @@"`
}

// Define declares a named procedure
type Define struct {
	Pos  lexer.Position
	Name string       `parser:"'define' @Ident"`
	Body []*Statement `parser:"'{' @@* '}'"`
}

// Statement is one instruction
type Statement struct {
	Pos lexer.Position

	Action string  `parser:"(  @('move' | 'turnleft' | 'putbeeper' | 'pickbeeper' | 'turnoff')"`
	Repeat *Repeat `parser:" | @@"`
	While  *While  `parser:" | @@"`
	If     *If     `parser:" | @@"`
	Call   string  `parser:" | @Ident ) ';'?"`
}

type Repeat struct {
	Count int          `parser:"'repeat' @Int"`
	Body  []*Statement `parser:"'{' @@* '}'"`
}

type While struct {
	Cond *Condition   `parser:"'while' @@"`
	Body []*Statement `parser:"'{' @@* '}'"`
}

type If struct {
	Cond *Condition   `parser:"'if' @@"`
	Then []*Statement `parser:"'{' @@* '}'"`
	Else []*Statement `parser:"( 'else' '{' @@* '}' )?"`
}

// Condition is a sensor reading, optionally negated
type Condition struct {
	Pos    lexer.Position
	Not    bool   `parser:"@'not'?"`
	Sensor string `parser:"@Ident"`
}

var scriptParser = participle.MustBuild[File](
	participle.Lexer(scriptLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)
