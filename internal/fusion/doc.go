// Package fusion merges the facial and voice sensing channels into one
// stable emotion belief.
//
// The engine re-evaluates on a fixed 500ms tick, reading whatever each
// channel last published (channels sample on their own slower cadences).
// A merge step reconciles the two readings - handling missing channels,
// agreement, compatible disagreement, and genuine conflict - and a temporal
// smoothing step votes over the last five merge outputs to suppress label
// flicker. The resulting state is readable concurrently as an atomic
// snapshot.
package fusion
