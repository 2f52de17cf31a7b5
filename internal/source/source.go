// Package source loads amounts from tabular inputs.
//
// Each row contributes one raw amount identified by its zero-based data row
// index. Rows with a missing value in the amount column are dropped here;
// values that aren't numbers are dropped later by the normalizer.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lox/bank-combination-finder/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultColumn is the amount column used when none is given
const DefaultColumn = "Amount"

// Options control how rows are read
type Options struct {
	// Column is the header of the amount column
	Column string
	// LabelColumn is an optional header whose value is carried as a label
	LabelColumn string
	// Delimiter separates fields in delimited text, ',' when zero
	Delimiter rune
	// Concurrency limits how many files are read at once
	Concurrency int
}

// Format reads raw amounts from one input
type Format interface {
	// Name returns the name of the format
	Name() string

	// Load reads raw amounts from r
	Load(ctx context.Context, r io.Reader, opts Options) ([]types.RawAmount, error)
}

// Registry maintains a list of available input formats
type Registry struct {
	formats map[string]Format
}

// NewRegistry creates a new format registry
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
	}
}

// DefaultRegistry returns a registry with every built-in format
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewCSV())
	r.Register(NewQIF())
	return r
}

// Register adds a format to the registry
func (r *Registry) Register(f Format) {
	r.formats[f.Name()] = f
}

// Get returns a format by name
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// List returns the sorted names of all registered formats
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFiles reads every path with format concurrently and returns the amounts
// in path order. With more than one path, origin ids are prefixed with the
// path so they stay unique.
func LoadFiles(ctx context.Context, format Format, paths []string, opts Options) ([]types.RawAmount, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	results := make([][]types.RawAmount, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			amounts, err := format.Load(gCtx, f, opts)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}

			if len(paths) > 1 {
				for j := range amounts {
					amounts[j].OriginID = path + ":" + amounts[j].OriginID
				}
			}
			results[i] = amounts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.RawAmount
	for _, amounts := range results {
		all = append(all, amounts...)
	}
	return all, nil
}

// ParseList splits a whitespace or semicolon separated list of values into raw
// amounts numbered from zero
func ParseList(text string) []types.RawAmount {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == '\n' || r == '\t' || r == ' ' || r == '\r'
	})
	amounts := make([]types.RawAmount, len(fields))
	for i, f := range fields {
		amounts[i] = types.RawAmount{OriginID: fmt.Sprint(i), Value: f}
	}
	return amounts
}
