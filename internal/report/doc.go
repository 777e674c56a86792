// Package report renders scan results, summary digests, and batch
// outcomes in JSON, plain text, and Markdown. Writers share one
// interface so the CLI and the tool server can emit any format to any
// destination.
package report
