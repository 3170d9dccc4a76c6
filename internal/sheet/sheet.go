// Package sheet reads and writes the project list as a CSV spreadsheet.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zulandar/demodash/internal/models"
)

// Columns is the header row written by WriteProjects.
var Columns = []string{"id", "name", "value", "due_date", "status", "location", "client", "progress", "start_date", "description"}

// RowError reports a problem with one spreadsheet row. Line counts the
// header as line 1.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// WriteProjects writes projects as CSV with a header row.
func WriteProjects(w io.Writer, projects []models.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("sheet: write header: %w", err)
	}
	for _, p := range projects {
		rec := []string{
			strconv.FormatInt(p.ID, 10),
			safeCell(p.Name),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
			p.DueDate,
			p.Status,
			safeCell(p.Location),
			safeCell(p.Client),
			strconv.Itoa(p.Progress),
			p.StartDate,
			safeCell(p.Description),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("sheet: write project %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("sheet: flush: %w", err)
	}
	return nil
}

// ReadProjects parses a CSV with a header row into project drafts. Columns
// are matched by name, case-insensitively; unknown columns and the id
// column are ignored. Blank cells leave the field unset so create defaults
// apply. Every draft is checked with Build before anything is returned.
func ReadProjects(r io.Reader) ([]models.ProjectFields, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("sheet: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("sheet: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, errors.New("sheet: header has no name column")
	}

	var drafts []models.ProjectFields
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: %w", err)
		}
		if blank(rec) {
			continue
		}
		f, err := parseRow(rec, cols)
		if err == nil {
			_, err = f.Build()
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		drafts = append(drafts, f)
	}
	return drafts, nil
}

func parseRow(rec []string, cols map[string]int) (models.ProjectFields, error) {
	cell := func(name string) *string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return nil
		}
		v := unquoteCell(strings.TrimSpace(rec[i]))
		if v == "" {
			return nil
		}
		return &v
	}

	f := models.ProjectFields{
		Name:        cell("name"),
		DueDate:     cell("due_date"),
		Status:      cell("status"),
		Location:    cell("location"),
		Client:      cell("client"),
		StartDate:   cell("start_date"),
		Description: cell("description"),
	}
	if f.Status != nil {
		s := strings.ToLower(*f.Status)
		f.Status = &s
	}
	if v := cell("value"); v != nil {
		n, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(*v), 64)
		if err != nil {
			return f, &models.ValidationError{Field: "value", Msg: "must be a number"}
		}
		f.Value = &n
	}
	if v := cell("progress"); v != nil {
		n, err := strconv.Atoi(strings.TrimSuffix(*v, "%"))
		if err != nil {
			return f, &models.ValidationError{Field: "progress", Msg: "must be a whole number"}
		}
		f.Progress = &n
	}
	return f, nil
}

// safeCell prefixes text a spreadsheet would evaluate as a formula with a
// quote so it is shown as typed.
func safeCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@", rune(v[0])) {
		return "'" + v
	}
	return v
}

// unquoteCell undoes safeCell.
func unquoteCell(v string) string {
	if len(v) > 1 && v[0] == '\'' && strings.ContainsRune("=+-@", rune(v[1])) {
		return v[1:]
	}
	return v
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
