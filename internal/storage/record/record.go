// Package record reads and writes the roster line format:
//
//	<Kind> <Name> <X> <Y>
//
// one entity per line, whitespace separated.
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/zeusync/arena/internal/core/models"
)

var ErrInvalidName = errors.New("record name must be non-empty and contain no whitespace")

// Parse decodes one line. Malformed lines, unknown kinds, non-canonical
// integers and coordinates outside the grid all yield ok=false.
func Parse(line string) (rec models.Record, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return models.Record{}, false
	}
	kind, ok := models.ParseKind(fields[0])
	if !ok {
		return models.Record{}, false
	}
	x, ok := coord(fields[2])
	if !ok {
		return models.Record{}, false
	}
	y, ok := coord(fields[3])
	if !ok {
		return models.Record{}, false
	}
	if !models.InBounds(x, y) {
		return models.Record{}, false
	}
	return models.Record{Kind: kind, Name: fields[1], X: x, Y: y}, true
}

// coord accepts only the canonical decimal form, so "012" and "+12" are
// rejected and every parsed line formats back to itself.
func coord(field string) (int, bool) {
	v, err := strconv.Atoi(field)
	if err != nil || strconv.Itoa(v) != field {
		return 0, false
	}
	return v, true
}

// Format encodes rec without the trailing newline.
func Format(rec models.Record) string {
	return fmt.Sprintf("%s %s %d %d", rec.Kind, rec.Name, rec.X, rec.Y)
}

func validName(name string) bool {
	return name != "" && strings.IndexFunc(name, unicode.IsSpace) < 0
}

// Decode reads every line of r, keeping the valid records and counting the
// skipped ones. Blank lines are ignored without being counted.
func Decode(r io.Reader) (records []models.Record, skipped int, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := Parse(line)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err = sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read records: %w", err)
	}
	return records, skipped, nil
}

// Encode writes one newline-terminated line per record.
func Encode(w io.Writer, records []models.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if !validName(rec.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, rec.Name)
		}
		if _, err := bw.WriteString(Format(rec) + "\n"); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return bw.Flush()
}

// Records captures the persistable part of each entity.
func Records(entities []*models.Entity) []models.Record {
	out := make([]models.Record, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Record())
	}
	return out
}

func LoadFile(path string) ([]models.Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// SaveFile replaces the file at path with the given records.
func SaveFile(path string, records []models.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roster: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close roster: %w", cerr)
		}
	}()
	return Encode(f, records)
}
