// Package renderer turns decorations into terminal output.
//
// A Surface is the decoration registry of one document view: decoration
// types are created from settings style attributes, identified by UUID, and
// carry the ranges most recently painted with them. Two front ends read a
// Surface:
//
//   - Painter renders a document as ANSI text through lipgloss.
//   - Viewer draws it full screen on a tcell screen.
//
// Colors are written the way settings write them: "#rgb", "#rrggbb",
// "#rrggbbaa", rgb()/rgba() or a color name. Translucent colors are
// composited over black, since a terminal cell has no alpha.
package renderer
