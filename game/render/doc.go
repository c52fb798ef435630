// Package render turns world snapshots into drawable frames.
//
// A Canvas fixes the pixel geometry of a world: a grid of width x height
// cells with a margin of one and a half blocks, origin at the bottom left.
// BuildFrame converts a snapshot into the primitives a drawing surface needs
// (axis lines, wall segments, beeper markers and robot glyphs), and WriteSVG
// draws a frame as a standalone SVG document.
//
// TextRenderer and Recorder are engine observers. TextRenderer prints an
// ASCII picture of the world after every refresh; Recorder keeps the latest
// frame for concurrent readers such as the HTTP viewer.
package render
