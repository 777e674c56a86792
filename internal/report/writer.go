package report

import (
	"io"

	"github.com/feudadrien/a11yscan/internal/model"
)

// Writer defines the interface for report output.
// Implementations render scan output in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteResult outputs a full scan result.
	// Returns the number of bytes written and any error encountered.
	WriteResult(result *model.ScanResult) (int, error)

	// WriteDigest outputs a severity-ranked summary digest.
	// This is useful for quick review without full details.
	WriteDigest(digest *model.SummaryDigest) (int, error)

	// WriteBatch outputs the per-target entries of a batch scan, in
	// request order.
	WriteBatch(batch *model.BatchResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteResult outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteResult(result *model.ScanResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteResult(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDigest outputs the digest to all configured Writers.
func (m *MultiWriter) WriteDigest(digest *model.SummaryDigest) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDigest(digest)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch result to all configured Writers.
func (m *MultiWriter) WriteBatch(batch *model.BatchResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(batch)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
