/*
Package recipient provides the CSV recipient source for Mailout.
*/
package recipient

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrInvalidSource indicates the recipient file is missing, unreadable,
// or contains no parsable rows.
var ErrInvalidSource = errors.New("invalid recipient source")

var addressRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidAddress reports whether s has the shape of an email address.
func ValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// Record is one recipient row from the source file. Fields holds the
// named columns usable as template placeholders; it always contains
// "email", and "name" defaults to the local part of the address when the
// source does not provide one.
type Record struct {
	Row     int // 1-based data row number
	Address string
	Fields  map[string]string
}

// Read loads all recipient records from a comma-delimited file.
//
// The first row is treated as a header when it mentions an "email" column
// or when its first field does not contain "@". Headerless files are read
// as address-only (first column address, optional second column name).
// Rows with malformed addresses are returned as-is so the caller can
// record a per-row outcome; Read only fails when the whole file is
// unusable.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSource, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := readRows(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSource, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no rows", ErrInvalidSource, path)
	}

	var header []string
	if isHeader(rows[0]) {
		header = rows[0]
		rows = rows[1:]
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, makeRecord(i+1, row, header))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: header only, no data rows", ErrInvalidSource, path)
	}

	log.Debug("Loaded recipient source", "path", path, "records", len(records))
	return records, nil
}

func readRows(r *csv.Reader) ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// isHeader applies the detection heuristic: a first row naming an email
// column, or whose first field is not address-shaped, is a header.
func isHeader(row []string) bool {
	for _, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), "email") {
			return true
		}
	}
	return len(row) > 0 && !strings.Contains(row[0], "@")
}

func makeRecord(num int, row []string, header []string) Record {
	fields := make(map[string]string)
	address := ""

	if header != nil {
		for i, name := range header {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || i >= len(row) {
				continue
			}
			fields[name] = strings.TrimSpace(row[i])
		}
		address = fields["email"]
		if address == "" && len(row) > 0 {
			// Header present but no email column; fall back to column 0.
			address = strings.TrimSpace(row[0])
			fields["email"] = address
		}
	} else {
		if len(row) > 0 {
			address = strings.TrimSpace(row[0])
		}
		fields["email"] = address
		if len(row) > 1 {
			fields["name"] = strings.TrimSpace(row[1])
		}
	}

	if fields["name"] == "" {
		fields["name"] = localPart(address)
	}

	return Record{Row: num, Address: address, Fields: fields}
}

func localPart(address string) string {
	if at := strings.Index(address, "@"); at > 0 {
		return address[:at]
	}
	return address
}
