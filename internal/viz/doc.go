// Package viz draws pressure bodies in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Viewport]: world to canvas mapping that follows the body
//   - [Model]: Bubble Tea live viewer for one experiment
//   - [App]: preset menu in front of the live viewer
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Recenter the body on the origin
//	X     - Restart from the configured rest shape
//	N     - Toggle particle normals
//	[ ]   - Select parameter
//	+ -   - Scale the selected parameter
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
