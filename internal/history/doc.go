// Package history persists scan verdicts in a local SQLite database so past
// results can be listed without spending API quota.
package history
