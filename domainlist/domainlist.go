// Package domainlist turns tabular input (CSV-like text or an Excel workbook)
// into an ordered, de-duplicated list of bare domain names.
package domainlist

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/xerrors"
)

var (
	// ErrFileNotFound is returned by Load when the input path does not exist.
	ErrFileNotFound = xerrors.New("input file not found")

	// ErrNoColumns is returned when the input has no header columns at all.
	ErrNoColumns = xerrors.New("no domain/website/url column found")

	// candidateColumns are tried in order before falling back to the
	// first column.
	candidateColumns = []string{"domain", "website", "url", "Domain", "Website", "URL"}

	// delimiters that can be sniffed from the header line.
	delimiters = []rune{',', ';', '\t', '|'}

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// Normalize reduces a raw cell value to a bare host name: surrounding
// whitespace, the scheme, a leading "www." and everything from the first "/"
// onwards are removed and the result is lower-cased. An empty return value
// means the cell carried no domain.
//
// The reduction is repeated until it reaches a fixed point so that
// Normalize(Normalize(x)) == Normalize(x) holds for inputs such as
// "www.www.example.com".
func Normalize(raw string) string {
	for {
		next := normalizeOnce(raw)
		if next == raw {
			return next
		}
		raw = next
	}
}

func normalizeOnce(raw string) string {
	d := strings.TrimSpace(raw)
	lower := strings.ToLower(d)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			d = d[len(scheme):]
			break
		}
	}
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "www.")
	if idx := strings.IndexByte(d, '/'); idx >= 0 {
		d = d[:idx]
	}
	return strings.TrimSpace(d)
}

// Load reads the domain list stored at path. Workbooks (.xlsx) are read from
// their first sheet; any other file is parsed as delimited text.
func Load(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("domainlist: %s: %w", path, ErrFileNotFound)
		}
		return nil, xerrors.Errorf("domainlist: stat input: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("domainlist: open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	domains, err := Parse(f)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", filepath.Base(path), err)
	}
	return domains, nil
}

func loadWorkbook(path string) ([]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, xerrors.Errorf("domainlist: open workbook: %w", err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, xerrors.Errorf("%s: %w", filepath.Base(path), ErrNoColumns)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, xerrors.Errorf("domainlist: read sheet %q: %w", sheets[0], err)
	}

	domains, err := ParseRows(rows)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", filepath.Base(path), err)
	}
	return domains, nil
}

// Parse reads delimited text with a header row. The delimiter is sniffed from
// the header line.
func Parse(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	header, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, xerrors.Errorf("domainlist: read header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(header)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, xerrors.Errorf("domainlist: parse input: %w", err)
	}
	return ParseRows(rows)
}

// ParseRows extracts the domain column from rows, whose first entry is the
// header, and returns the normalized domains in first-occurrence order.
func ParseRows(rows [][]string) ([]string, error) {
	if len(rows) == 0 || !hasColumns(rows[0]) {
		return nil, ErrNoColumns
	}

	col := domainColumn(rows[0])
	seen := make(map[string]struct{}, len(rows))
	domains := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		d := Normalize(row[col])
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	return domains, nil
}

func domainColumn(header []string) int {
	for _, want := range candidateColumns {
		for i, name := range header {
			if strings.TrimSpace(name) == want {
				return i
			}
		}
	}
	return 0
}

func hasColumns(header []string) bool {
	for _, name := range header {
		if strings.TrimSpace(name) != "" {
			return true
		}
	}
	return false
}

func sniffDelimiter(head []byte) rune {
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		head = head[:idx]
	}
	best, bestCount := ',', 0
	for _, d := range delimiters {
		if n := bytes.Count(head, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
