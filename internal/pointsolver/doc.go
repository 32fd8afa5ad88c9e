// Package pointsolver locates the multiple images of a point source: the
// image-plane coordinates whose ray-traced source-plane position matches a
// target point, to a requested angular precision.
//
// The mass model is consumed as an opaque ray-tracing callable and is never
// assumed to be analytically invertible. The solver searches by iterative
// grid refinement: cells whose ray-traced corners bracket the target survive,
// are buffered with their immediate neighbours and split into quadrants, and
// the process repeats until the cell size reaches the requested precision.
//
// Completeness limitation: an image confined to a source-plane feature
// narrower than one cell of the initial grid can be missed entirely, since no
// corner bracket will detect it. Start from a grid at least as fine as the
// smallest caustic feature of interest.
//
// A Solver is a pure value; calls share no state and are safe to issue
// concurrently across independent lens models.
package pointsolver
