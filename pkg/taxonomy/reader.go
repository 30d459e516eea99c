package taxonomy

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/muchdogesec/location2stix/pkg/errors"
)

// Column names in the source table.
const (
	ColName               = "name"
	ColAlpha2             = "alpha-2"
	ColAlpha3             = "alpha-3"
	ColCountryCode        = "country-code"
	ColISO31662           = "iso_3166-2"
	ColRegion             = "region"
	ColSubRegion          = "sub-region"
	ColIntermediateRegion = "intermediate-region"
)

// RequiredColumns must appear in the header. intermediate-region is optional.
var RequiredColumns = []string{
	ColName, ColAlpha2, ColAlpha3, ColCountryCode, ColISO31662, ColRegion, ColSubRegion,
}

// Row is one record of the taxonomy table.
type Row struct {
	Name               string
	Alpha2             string
	Alpha3             string
	CountryCode        string
	ISO31662           string
	Region             string
	SubRegion          string
	IntermediateRegion string
}

// ReadCSV reads every row from r.
// A leading UTF-8 byte order mark is skipped. Rows are returned in file
// order, including rows with an empty name; callers decide what to skip.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, RequiredColumns); err != nil {
		return nil, err
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read line %d", line)
		}
		rows = append(rows, Row{
			Name:               field(rec, ColName),
			Alpha2:             field(rec, ColAlpha2),
			Alpha3:             field(rec, ColAlpha3),
			CountryCode:        field(rec, ColCountryCode),
			ISO31662:           field(rec, ColISO31662),
			Region:             field(rec, ColRegion),
			SubRegion:          field(rec, ColSubRegion),
			IntermediateRegion: field(rec, ColIntermediateRegion),
		})
	}
	return rows, nil
}

// ImportCSV reads the taxonomy table at path.
func ImportCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing header")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read header")
	}
	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid header encoding")
		}
	}
	return h, nil
}

// headerIndex maps column names to positions. The first occurrence of a
// duplicated column wins.
func headerIndex(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := m[name]; !ok {
			m[name] = i
		}
	}
	return m
}

func requireColumns(idx map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "missing required header column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}
