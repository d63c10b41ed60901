// Package analysis holds the filter and aggregation pipeline that turns the
// persisted entry table into chart-ready summaries. Every function is pure:
// inputs are never mutated and results depend only on arguments.
package analysis
