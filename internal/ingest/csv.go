package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// rawRow is the loosely structured CSV record: every field is the string
// the file carried, present or empty.  Validation converts the pieces into
// strict values (floats, ints, ISO dates) before anything touches the store.
type rawRow struct {
	SampleID       string
	StartName      string
	StartPoint     string
	EndName        string
	EndPoint       string
	Species        string
	ReadCount      string
	CollectionDate string
}

// sampleGroup is one logical sample: all CSV rows sharing a sample_id.
// The route fields are taken from the first row; every row contributes a
// detection.
type sampleGroup struct {
	SampleID string
	Rows     []rawRow
}

// parseRows reads the CSV into rawRows, mapping columns by header name so
// column order does not matter.  Rows missing sample_id or species are
// discarded silently; they are typically blank trailing lines, not data.
func parseRows(data []byte) ([]rawRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []rawRow
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// One malformed line (say a bare quote) must not discard
				// every valid row after it; the reader resumes on the
				// next line.
				continue
			}
			break
		}
		row := rawRow{
			SampleID:       field(rec, "sample_id"),
			StartName:      field(rec, "start_name"),
			StartPoint:     field(rec, "start_point"),
			EndName:        field(rec, "end_name"),
			EndPoint:       field(rec, "end_point"),
			Species:        field(rec, "species"),
			ReadCount:      field(rec, "read_count"),
			CollectionDate: field(rec, "collection_date"),
		}
		if row.SampleID == "" || row.Species == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// groupBySample buckets rows by sample_id, preserving first-seen order.
func groupBySample(rows []rawRow) []*sampleGroup {
	byID := map[string]*sampleGroup{}
	var groups []*sampleGroup
	for _, row := range rows {
		g := byID[row.SampleID]
		if g == nil {
			g = &sampleGroup{SampleID: row.SampleID}
			byID[row.SampleID] = g
			groups = append(groups, g)
		}
		g.Rows = append(g.Rows, row)
	}
	return groups
}

// parsePoint parses a free-text coordinate pair of the form "<lat>, <lon>".
// Both components must be finite numbers.
func parsePoint(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lat, lon\", got %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, fmt.Errorf("non-finite coordinate in %q", s)
	}
	return lat, lon, nil
}

// NormalizeDate converts DD/MM/YYYY to ISO YYYY-MM-DD.  Already-ISO values
// pass through, since field tooling sometimes exports them that way.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}
