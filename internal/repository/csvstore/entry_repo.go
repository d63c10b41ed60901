// internal/repository/csvstore/entry_repo.go
package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
	"github.com/stepsurvey/steps-survey/internal/storage"
)

// Column names of the persisted table, in the order used for new files.
const (
	ColDate   = "date"
	ColSteps  = "steps"
	ColEnergy = "energy"
	ColNotes  = "notes"
)

// Header is the header row written when the table is created.
var Header = []string{ColDate, ColSteps, ColEnergy, ColNotes}

// csvEntryRepository implements repository.EntryRepository as a single CSV
// resource in a BlobStore. Each Append reads the whole table and rewrites it.
type csvEntryRepository struct {
	blobs storage.BlobStore
	key   string
	log   *slog.Logger
}

// NewCSVEntryRepository creates an Entry Store kept under key in blobs.
func NewCSVEntryRepository(blobs storage.BlobStore, key string, logger *slog.Logger) repository.EntryRepository {
	return &csvEntryRepository{blobs: blobs, key: key, log: logger}
}

// Append adds entry as the last row. Existing rows are carried over as raw
// fields, so a corrupt row is never reinterpreted on write.
func (r *csvEntryRepository) Append(ctx context.Context, entry domain.Entry) error {
	records, err := r.readRecords(ctx)
	if err != nil {
		return &repository.PersistenceError{Op: "append", Key: r.key, Err: err}
	}
	if len(records) == 0 {
		records = [][]string{append([]string(nil), Header...)}
	}

	header := ensureColumns(records[0])
	records[0] = header
	records = append(records, encodeRow(header, entry))

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return &repository.PersistenceError{Op: "append", Key: r.key, Err: err}
	}

	if err := r.blobs.Put(ctx, r.key, buf.Bytes()); err != nil {
		return &repository.PersistenceError{Op: "append", Key: r.key, Err: err}
	}
	r.log.Debug("entry appended", "key", r.key, "rows", len(records)-1)
	return nil
}

// Load parses the table. Unparseable steps/energy become 0 and rows with an
// unparseable date are dropped; both are counted in the report.
func (r *csvEntryRepository) Load(ctx context.Context) (domain.EntryTable, repository.LoadReport, error) {
	var report repository.LoadReport

	data, err := r.blobs.Get(ctx, r.key)
	if errors.Is(err, storage.ErrObjectNotFound) || (err == nil && len(data) == 0) {
		return nil, report, repository.ErrEmptyStore
	}
	if err != nil {
		return nil, report, err
	}

	records, err := parseRecords(data)
	if err != nil {
		return nil, report, &repository.ParseError{Key: r.key, Err: err}
	}
	if len(records) == 0 {
		return nil, report, repository.ErrEmptyStore
	}

	idx := columnIndex(records[0])
	table := make(domain.EntryTable, 0, len(records)-1)
	for _, rec := range records[1:] {
		report.Rows++

		date, ok := parseLooseDate(field(rec, idx, ColDate))
		if !ok {
			report.DroppedDate++
			continue
		}
		steps, okSteps := coerceInt(field(rec, idx, ColSteps))
		energy, okEnergy := coerceInt(field(rec, idx, ColEnergy))
		if !okSteps || !okEnergy {
			report.Coerced++
		}

		table = append(table, domain.Entry{
			Date:   date,
			Steps:  steps,
			Energy: energy,
			Notes:  field(rec, idx, ColNotes),
		})
	}

	if !report.Clean() {
		r.log.Warn("entry table has rows that needed repair",
			"key", r.key, "rows", report.Rows, "coerced", report.Coerced, "droppedDate", report.DroppedDate)
	}
	return table, report, nil
}

func (r *csvEntryRepository) readRecords(ctx context.Context) ([][]string, error) {
	data, err := r.blobs.Get(ctx, r.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	records, err := parseRecords(data)
	if err != nil {
		return nil, &repository.ParseError{Key: r.key, Err: err}
	}
	return records, nil
}

func parseRecords(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1 // Tolerate ragged rows; missing fields read as empty
	return cr.ReadAll()
}

// ensureColumns appends any of the four known columns missing from header.
// Existing column order is never changed.
func ensureColumns(header []string) []string {
	idx := columnIndex(header)
	for _, col := range Header {
		if _, ok := idx[col]; !ok {
			header = append(header, col)
		}
	}
	return header
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = cleanName(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// cleanName strips whitespace and a UTF-8 byte order mark from a header cell.
func cleanName(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
}

func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func encodeRow(header []string, e domain.Entry) []string {
	row := make([]string, len(header))
	for i, name := range header {
		switch cleanName(name) {
		case ColDate:
			row[i] = e.DateString()
		case ColSteps:
			row[i] = strconv.Itoa(e.Steps)
		case ColEnergy:
			row[i] = strconv.Itoa(e.Energy)
		case ColNotes:
			row[i] = e.Notes
		}
	}
	return row
}

var looseDateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseLooseDate accepts the canonical layout plus timestamp forms other tools
// write when they round-trip the file.
func parseLooseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TruncateDate(t), true
		}
	}
	return time.Time{}, false
}

// coerceInt parses an integer field, accepting float notation such as "5000.0".
// Anything else becomes 0 and ok is false.
func coerceInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
