package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CSVFile appends rows to a local CSV file. The header is written once, when
// the file is created.
type CSVFile struct {
	mu     sync.Mutex
	path   string
	header []string
}

var _ Sink = (*CSVFile)(nil)

// NewCSVFile returns a sink writing to path. The file and its parent
// directory are created on first append.
func NewCSVFile(path string, header []string) (*CSVFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	return &CSVFile{path: filepath.Clean(path), header: header}, nil
}

// AppendRows appends the rows, creating the file with its header first when
// needed.
func (c *CSVFile) AppendRows(ctx context.Context, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		writeHeader = len(c.header) > 0
		if dir := filepath.Dir(c.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create csv directory: %w", err)
			}
		}
	} else if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}

	file, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(c.header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv rows: %w", err)
	}
	return file.Sync()
}

// ReadRows returns every data row in the file, skipping the header. A
// missing file reads as empty.
func (c *CSVFile) ReadRows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	if len(c.header) > 0 && len(records) > 0 {
		records = records[1:]
	}
	return records, nil
}
