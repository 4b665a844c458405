package student

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// ImportRow is one roster line from an uploaded file.
type ImportRow struct {
	StudentID string `json:"studentId" validate:"required"`
	Prefix    string `json:"prefix" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Level     string `json:"level" validate:"required"`
}

// ImportError records why a single row was rejected.
type ImportError struct {
	StudentID string `json:"studentId"`
	Error     string `json:"error"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Students []Student     `json:"students"`
	Errors   []ImportError `json:"errors"`
}

// ErrBadFile means the uploaded roster could not be parsed at all.
var ErrBadFile = errors.New("unreadable roster file")

// ErrIncompleteRows means at least one row is missing required columns.
type ErrIncompleteRows struct {
	Rows []ImportRow
}

func (e *ErrIncompleteRows) Error() string {
	return fmt.Sprintf("%d roster rows are incomplete", len(e.Rows))
}

// Importer parses roster files and feeds each row through the same
// create path (and attendance fan-out) as direct entry.
type Importer struct {
	svc      *Service
	validate *validator.Validate
}

// NewImporter wires an importer to the student service.
func NewImporter(svc *Service) *Importer {
	return &Importer{svc: svc, validate: validator.New()}
}

// Import parses the file (CSV or XLSX by filename), validates every row
// up front, then creates students one by one collecting per-row errors.
func (im *Importer) Import(ctx context.Context, filename string, data []byte) (ImportResult, error) {
	var (
		rows []ImportRow
		err  error
	)
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		rows, err = parseXLSX(data)
	} else {
		rows, err = parseCSV(data)
	}
	if err != nil {
		return ImportResult{}, err
	}

	var invalid []ImportRow
	for _, row := range rows {
		if im.validate.Struct(row) != nil {
			invalid = append(invalid, row)
		}
	}
	if len(invalid) > 0 {
		return ImportResult{}, &ErrIncompleteRows{Rows: invalid}
	}

	var res ImportResult
	for _, row := range rows {
		created, err := im.svc.Create(ctx, Student{
			StudentID: row.StudentID,
			Prefix:    row.Prefix,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Level:     row.Level,
		})
		if err != nil {
			res.Errors = append(res.Errors, ImportError{StudentID: row.StudentID, Error: importErrorMessage(err)})
			continue
		}
		res.Students = append(res.Students, created)
	}
	return res, nil
}

func importErrorMessage(err error) string {
	if errors.Is(err, ErrDuplicateID) {
		return "รหัสนักศึกษานี้มีอยู่ในระบบแล้ว"
	}
	return "เกิดข้อผิดพลาดในการเพิ่มนักศึกษา"
}

func parseCSV(data []byte) ([]ImportRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrBadFile
	}
	idx := headerIndex(header)

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrBadFile
		}
		rows = append(rows, rowFromRecord(record, idx))
	}
	return rows, nil
}

func parseXLSX(data []byte) ([]ImportRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ErrBadFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrBadFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil || len(records) == 0 {
		return nil, ErrBadFile
	}

	idx := headerIndex(records[0])
	var rows []ImportRow
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		rows = append(rows, rowFromRecord(record, idx))
	}
	return rows, nil
}

// headerIndex maps the expected column names to their positions so
// column order in the file does not matter.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func rowFromRecord(record []string, idx map[string]int) ImportRow {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	return ImportRow{
		StudentID: get("studentId"),
		Prefix:    get("prefix"),
		FirstName: get("firstName"),
		LastName:  get("lastName"),
		Level:     get("level"),
	}
}
