package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/sayingsbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ErrDataLoad is wrapped by every DataLoadError.
var ErrDataLoad = errors.New("failed to load sayings")

// DataLoadError describes a missing or malformed question source
type DataLoadError struct {
	Path string
	Row  int // 1-based; 0 when the error is not tied to a row
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%v from %s: row %d: %v", ErrDataLoad, e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("%v from %s: %v", ErrDataLoad, e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() []error {
	return []error{ErrDataLoad, e.Err}
}

// ImportConfig defines where the sayings live and how the columns are named
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	SheetName        string // Sheet to read; the first sheet when empty
	SourceColumn     string // Header of the column with the Russian saying
	CorrectColumn    string // Header of the column with the correct translation
	IncorrectColumn  string // Header of the column with the decoy translation
	DifficultyColumn string // Header of the column with the difficulty level
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FilePath:         filepath.Join("data", "sayings.xlsx"),
		SourceColumn:     "russian_sayings",
		CorrectColumn:    "english_correct_translation",
		IncorrectColumn:  "english_incorrect_translation",
		DifficultyColumn: "difficulty_level",
	}
}

// LoadCatalog reads every saying from an Excel or CSV file, preserving file order.
// The first row is the header.
func LoadCatalog(config ImportConfig) ([]models.Saying, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var (
		rows [][]string
		err  error
	)
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, &DataLoadError{Path: config.FilePath, Err: err}
	}

	return parseRows(rows, config)
}

// readExcel returns the rows of the configured sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns all records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRows turns header + data rows into sayings
func parseRows(rows [][]string, config ImportConfig) ([]models.Saying, error) {
	if len(rows) == 0 {
		return nil, &DataLoadError{Path: config.FilePath, Err: errors.New("file is empty")}
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}

	var columns [4]int
	for i, name := range []string{
		config.SourceColumn,
		config.CorrectColumn,
		config.IncorrectColumn,
		config.DifficultyColumn,
	} {
		idx, ok := header[name]
		if !ok {
			return nil, &DataLoadError{Path: config.FilePath, Row: 1, Err: fmt.Errorf("missing column %q", name)}
		}
		columns[i] = idx
	}

	sayings := make([]models.Saying, 0, len(rows)-1)
	seen := make(map[string]int, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}

		values := make([]string, len(columns))
		for j, col := range columns {
			if col < len(row) {
				values[j] = strings.TrimSpace(row[col])
			}
			if values[j] == "" {
				return nil, &DataLoadError{
					Path: config.FilePath,
					Row:  rowNum,
					Err:  fmt.Errorf("missing value in column %q", rows[0][col]),
				}
			}
		}

		// The store keys counters by saying text, so a repeat would share them
		if first, ok := seen[values[0]]; ok {
			return nil, &DataLoadError{
				Path: config.FilePath,
				Row:  rowNum,
				Err:  fmt.Errorf("duplicate saying %q (first at row %d)", values[0], first),
			}
		}
		seen[values[0]] = rowNum

		difficulty, err := parseDifficulty(values[3])
		if err != nil {
			return nil, &DataLoadError{Path: config.FilePath, Row: rowNum, Err: err}
		}

		sayings = append(sayings, models.Saying{
			SourceText:           values[0],
			CorrectTranslation:   values[1],
			IncorrectTranslation: values[2],
			DifficultyLevel:      difficulty,
		})
	}

	return sayings, nil
}

// parseDifficulty accepts 32-bit integers, including integral numbers written as "1.0"
func parseDifficulty(s string) (int, error) {
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("difficulty %q is not an integer", s)
	}
	return int(f), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
