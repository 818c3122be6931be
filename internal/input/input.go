package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/fundscrape/internal/model"
)

// Format describes how a site's project list is laid out
type Format struct {
	IDColumn   int
	NameColumn int
	// IsHeader reports rows to skip, detected by a sentinel column value
	IsHeader func(row []string) bool
}

// ReadProjectsFromFile reads the project list at path
func ReadProjectsFromFile(path string, format Format) ([]model.Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadProjects(file, format)
}

// ReadProjects parses CSV records into projects, preserving order
func ReadProjects(r io.Reader, format Format) ([]model.Project, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	need := max(format.IDColumn, format.NameColumn) + 1

	var projects []model.Project
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		if format.IsHeader != nil && format.IsHeader(row) {
			continue
		}
		if len(row) < need {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, need, len(row))
		}

		projects = append(projects, model.Project{
			ID:   row[format.IDColumn],
			Name: row[format.NameColumn],
		})
	}

	return projects, nil
}
