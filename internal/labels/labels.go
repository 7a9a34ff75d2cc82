// Package labels loads the class label table that is index-aligned with the
// classifier's score vector.
package labels

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrLoad is returned when the label resource cannot be read.
var ErrLoad = errors.New("failed to load label table")

// Table is an immutable ordered list of raw label records. Record i explains
// score i of the classifier output.
type Table struct {
	records []string
}

// Load reads one record per line from r. The resource is ISO-8859-1 encoded;
// titles and authors rely on that byte-to-character mapping.
func Load(r io.Reader) (*Table, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(r)

	var records []string
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		records = append(records, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrLoad)
	}

	return &Table{records: records}, nil
}

// LoadFS opens name in fsys and loads it with Load.
func LoadFS(fsys fs.FS, name string) (*Table, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	return Load(f)
}

// New builds a table from already decoded records.
func New(records []string) *Table {
	cp := make([]string, len(records))
	copy(cp, records)
	return &Table{records: cp}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Record returns the raw record at index i.
func (t *Table) Record(i int) (string, bool) {
	if t == nil || i < 0 || i >= len(t.records) {
		return "", false
	}
	return t.records[i], true
}
