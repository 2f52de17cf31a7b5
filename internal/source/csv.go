package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/types"
)

// CSV reads delimited text with a header row
type CSV struct{}

// NewCSV creates a new delimited text format
func NewCSV() *CSV {
	return &CSV{}
}

// Name returns the name of the format
func (c *CSV) Name() string {
	return "csv"
}

// Load reads the amount column from delimited text. A missing amount column
// is a configuration error.
func (c *CSV) Load(ctx context.Context, r io.Reader, opts Options) ([]types.RawAmount, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &combination.ConfigError{Field: "column", Reason: "input has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}
	amountIdx := columnIndex(header, column)
	if amountIdx < 0 {
		return nil, &combination.ConfigError{
			Field:  "column",
			Reason: fmt.Sprintf("%q not found, available: %s", column, strings.Join(header, ", ")),
		}
	}

	labelIdx := -1
	if opts.LabelColumn != "" {
		labelIdx = columnIndex(header, opts.LabelColumn)
		if labelIdx < 0 {
			return nil, &combination.ConfigError{
				Field:  "label column",
				Reason: fmt.Sprintf("%q not found, available: %s", opts.LabelColumn, strings.Join(header, ", ")),
			}
		}
	}

	var amounts []types.RawAmount
	for row := 0; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}

		if amountIdx >= len(record) || strings.TrimSpace(record[amountIdx]) == "" {
			continue
		}

		amount := types.RawAmount{
			OriginID: strconv.Itoa(row),
			Value:    record[amountIdx],
		}
		if labelIdx >= 0 && labelIdx < len(record) {
			amount.Label = strings.TrimSpace(record[labelIdx])
		}
		amounts = append(amounts, amount)
	}

	return amounts, nil
}

// columnIndex finds a header by exact name, then ignoring case and spaces
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Ensure CSV implements the Format interface
var _ Format = (*CSV)(nil)
