// Package liblinear is a pure-Go implementation of the LIBLINEAR training and
// prediction contract: sparse rows of 1-based (index, value) feature nodes
// terminated by an index -1 sentinel, a Problem/Parameter pair handed to
// Train, and an immutable Model scored by PredictValues.
//
// The eleven solver kinds and their native constants match LIBLINEAR, and
// WriteModel/ReadModel speak its text model format, so models trained here
// load in LIBLINEAR tools and vice versa.
//
// Coordinate-descent solvers shuffle with a math/rand source seeded from
// Parameter.Seed on every Train call, so training is reproducible.
package liblinear
