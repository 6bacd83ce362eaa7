package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readOptions keeps every column as text; typing happens in Clean. Only a
// literal NaN counts as missing, so text such as "NA" or "<nil>" is kept.
func readOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"NaN"}),
	}
}

// LoadFile reads the dataset at path into a DataFrame of string columns.
// Workbooks (.xlsx) are read from their first sheet; anything else is
// treated as comma-separated text. No validation happens here.
func LoadFile(ctx context.Context, path string) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadWorkbook(f)
	}
	return LoadCSV(f)
}

// LoadCSV reads comma-separated text with a header row. A leading UTF-8
// byte order mark, as written by spreadsheet tools, is dropped.
func LoadCSV(r io.Reader) (dataframe.DataFrame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	df := dataframe.ReadCSV(decoded, readOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("%w: %w", ErrDatasetMalformed, df.Err)
	}
	return df, nil
}

// LoadWorkbook reads the first sheet of an xlsx workbook. Short rows are
// padded because the workbook reader drops trailing empty cells.
func LoadWorkbook(r io.Reader) (dataframe.DataFrame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %w", ErrDatasetMalformed, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: workbook has no sheets", ErrDatasetMalformed)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %w", ErrDatasetMalformed, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: sheet %q is empty", ErrDatasetMalformed, sheets[0])
	}

	width := len(rows[0])
	for i, row := range rows {
		switch {
		case len(row) < width:
			rows[i] = append(row, make([]string, width-len(row))...)
		case len(row) > width:
			rows[i] = row[:width]
		}
	}

	df := dataframe.LoadRecords(rows, readOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("%w: %w", ErrDatasetMalformed, df.Err)
	}
	return df, nil
}
