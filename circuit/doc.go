// Package circuit compiles region graphs into layered probabilistic circuits
// and runs them: exact log-likelihoods with missing values or soft evidence,
// EM flows and mini-batch EM, conditional sampling, and persistence.
//
// Nodes are stored in one array ordered layer by layer, so a single forward
// sweep over ids evaluates children before parents and the reverse sweep
// propagates flows. Values are kept in the log domain; sums use
// floats.LogSumExp.
//
// A Circuit is not safe for concurrent use: Forward may run concurrently
// with other Forward calls only when no Backward, MiniBatchEM or
// SetParameters is in flight.
//
// Complexity per example is O(nodes + edges) for Forward, Backward and Sample.
package circuit
