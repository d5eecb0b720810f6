package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/tx-engine/internal/engine"
)

// ParseError is a malformed field in an otherwise readable record. Ingestion
// errors are always fatal to the run; the line number points at the offending
// row (the header is line 1).
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader lazily parses transaction records from a CSV stream. Columns are
// mapped by header name, so column order does not matter, and all fields are
// whitespace-trimmed before parsing. The reader never seeks; restarting a
// stream means reopening it.
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	columns map[string]int
	line    int
}

// NewReader wraps r, consuming the header row immediately.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	// Reference rows legitimately omit the amount field.
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "client", "tx"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("header is missing required column %q", required)
		}
	}

	return &Reader{csv: cr, columns: columns, line: 1}, nil
}

// Open opens path and wraps it in a Reader. Close releases the file.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file %s: %w", path, err)
	}

	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// Next parses one record. It returns io.EOF at end of stream.
func (r *Reader) Next() (*engine.Transaction, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	r.line++

	txType, err := engine.ParseTransactionType(r.field(record, "type"))
	if err != nil {
		return nil, &ParseError{Line: r.line, Field: "type", Err: err}
	}

	client, err := strconv.ParseUint(r.field(record, "client"), 10, 16)
	if err != nil {
		return nil, &ParseError{Line: r.line, Field: "client", Err: err}
	}

	tx, err := strconv.ParseUint(r.field(record, "tx"), 10, 32)
	if err != nil {
		return nil, &ParseError{Line: r.line, Field: "tx", Err: err}
	}

	var amount *float64
	if raw := r.field(record, "amount"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ParseError{Line: r.line, Field: "amount", Err: err}
		}
		amount = &value
	}

	return &engine.Transaction{
		Type:   txType,
		Client: engine.ClientID(client),
		Tx:     engine.TransactionID(tx),
		Amount: amount,
	}, nil
}

// field reads a named column from record, trimmed. Missing columns and short
// rows read as empty.
func (r *Reader) field(record []string, name string) string {
	idx, ok := r.columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
