// Package examples implements the downstream filters over the
// example-sentence CSV files produced from the ingested shards. Pure
// functions: file paths in, counters out.
package examples

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result holds filter counters for logging.
type Result struct {
	Total int // rows read
	Kept  int // rows written
}

// Shortest writes the shortest half of inPath's rows, measured by rune
// length of column 0, to outPath. Ties break by original index and the
// surviving rows keep their original order.
func Shortest(inPath, outPath string) (Result, error) {
	lengths, err := readLengths(inPath)
	if err != nil {
		return Result{}, err
	}

	// Stable selection: sort indices by (length, index), keep the first half.
	order := make([]int, len(lengths))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if lengths[ia] != lengths[ib] {
			return lengths[ia] < lengths[ib]
		}
		return ia < ib
	})

	selected := make(map[int]bool, len(order)/2)
	for _, idx := range order[:len(order)/2] {
		selected[idx] = true
	}

	kept, err := copyRows(inPath, outPath, func(idx int, _ []string) bool {
		return selected[idx]
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Total: len(lengths), Kept: kept}, nil
}

// Pairs writes the rows whose trimmed column 0 contains exactly one space
// to outPath, preserving order. Such rows hold two-word collocations.
func Pairs(inPath, outPath string) (Result, error) {
	total := 0
	kept, err := copyRows(inPath, outPath, func(_ int, row []string) bool {
		total++
		if len(row) == 0 {
			return false
		}
		return strings.Count(strings.TrimSpace(row[0]), " ") == 1
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Total: total, Kept: kept}, nil
}

// DefaultOutPath derives the conventional sibling output name, e.g.
// dir/all.csv -> dir/short.csv.
func DefaultOutPath(inPath, name string) string {
	return filepath.Join(filepath.Dir(inPath), name+".csv")
}

// readLengths streams the CSV once, collecting the rune length of column 0
// per row.
func readLengths(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	var lengths []int
	for {
		row, err := r.Read()
		if err != nil {
			if isEOF(err) {
				return lengths, nil
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) == 0 {
			lengths = append(lengths, 0)
			continue
		}
		lengths = append(lengths, utf8.RuneCountInString(row[0]))
	}
}

// copyRows streams inPath row by row and writes the rows keep selects.
func copyRows(inPath, outPath string, keep func(idx int, row []string) bool) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	r := newReader(in)
	w := csv.NewWriter(out)

	count := 0
	for idx := 0; ; idx++ {
		row, err := r.Read()
		if err != nil {
			if isEOF(err) {
				break
			}
			return count, fmt.Errorf("read csv row %d: %w", idx, err)
		}
		if !keep(idx, row) {
			continue
		}
		if err := w.Write(row); err != nil {
			return count, fmt.Errorf("write csv row %d: %w", idx, err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flush output: %w", err)
	}
	return count, nil
}

func newReader(f *os.File) *csv.Reader {
	r := csv.NewReader(f)
	// Example rows carry a variable number of trailing columns.
	r.FieldsPerRecord = -1
	return r
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
