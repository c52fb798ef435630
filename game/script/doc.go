// Package script runs small robot programs.
//
// A program is a sequence of statements:
//
//	# walk to the wall, dropping a beeper on the way
//	define turnright { turnleft turnleft turnleft }
//	while front_is_clear {
//		if not next_to_a_beeper { putbeeper }
//		move
//	}
//	turnright
//	repeat 2 { move }
//	turnoff
//
// Actions are move, turnleft, putbeeper, pickbeeper and turnoff. Conditions
// name one of the robot's sensors, optionally negated with not. Procedures
// declared with define may be called by name anywhere in the program,
// including recursively.
package script
