package loader

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const (
	kwEastWest   = "eastwestwalls"
	kwNorthSouth = "northsouthwalls"
	kwBeepers    = "beepers"
)

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Other", Pattern: `\S+`},
})

// Directive is one recognized line of a world file
type Directive struct {
	Pos lexer.Position

	EastWest   *EastWestWall    `parser:"(  @@"`
	NorthSouth *NorthSouthWall  `parser:" | @@"`
	Beepers    *BeeperDirective `parser:" | @@ )"`

	// Trailing fields are ignored.
	Trailing []string `parser:"(@Int | @Ident | @Other)*"`
}

// EastWestWall is a wall segment lying along a row
type EastWestWall struct {
	Y int `parser:"'eastwestwalls' @Int"`
	X int `parser:"@Int"`
}

// NorthSouthWall is a wall segment lying along a column
type NorthSouthWall struct {
	X int `parser:"'northsouthwalls' @Int"`
	Y int `parser:"@Int"`
}

// BeeperDirective places a pile of beepers
type BeeperDirective struct {
	Y     int `parser:"'beepers' @Int"`
	X     int `parser:"@Int"`
	Count int `parser:"@Int"`
}

var directiveParser = participle.MustBuild[Directive](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)
