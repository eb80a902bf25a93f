// Package report renders scanner state, batch results and scan history as
// plain text, JSON or Markdown.
package report
