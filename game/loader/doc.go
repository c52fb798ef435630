// Package loader reads and writes world description files.
//
// A world file is line oriented, one directive per line:
//
//	eastwestwalls <y> <x>       wall on top of cell (x,y), blocking (x,y) <-> (x,y+1)
//	northsouthwalls <x> <y>     wall east of cell (x,y), blocking (x,y) <-> (x+1,y)
//	beepers <y> <x> <n>         n beepers at (x,y); n = -1 is an inexhaustible pile
//
// Any other line is ignored. Directive lines are parsed with a participle grammar,
// so malformed directives are reported with their line number.
//
// Usage:
//
//	path, err := loader.Resolve("maze", "worlds")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := loader.Load(world, path); err != nil {
//		log.Fatal(err)
//	}
package loader
