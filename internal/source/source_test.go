package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVLoad(t *testing.T) {
	input := `Date,Description,Amount
2025-10-01,Rent,100.00
2025-10-02,Missing,
2025-10-03,Coffee,"1,150.00"
2025-10-04,Short
2025-10-05,Refund,n/a
`
	amounts, err := NewCSV().Load(context.Background(), strings.NewReader(input), Options{
		Column:      "Amount",
		LabelColumn: "description",
	})
	require.NoError(t, err)

	assert.Equal(t, []types.RawAmount{
		{OriginID: "0", Label: "Rent", Value: "100.00"},
		{OriginID: "2", Label: "Coffee", Value: "1,150.00"},
		{OriginID: "4", Label: "Refund", Value: "n/a"},
	}, amounts)
}

func TestCSVLoadDelimiter(t *testing.T) {
	amounts, err := NewCSV().Load(context.Background(), strings.NewReader("amount;ref\n5.00;a\n-2.50;b\n"), Options{
		Column:    "Amount",
		Delimiter: ';',
	})
	require.NoError(t, err)

	assert.Equal(t, []types.RawAmount{
		{OriginID: "0", Value: "5.00"},
		{OriginID: "1", Value: "-2.50"},
	}, amounts)
}

func TestCSVMissingColumn(t *testing.T) {
	_, err := NewCSV().Load(context.Background(), strings.NewReader("Date,Total\n2025-01-01,1.00\n"), Options{Column: "Amount"})

	require.ErrorIs(t, err, combination.ErrConfiguration)
	assert.Contains(t, err.Error(), "Date, Total")

	_, err = NewCSV().Load(context.Background(), strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, combination.ErrConfiguration)
}

func TestQIFLoad(t *testing.T) {
	input := "!Type:Bank\nD01/05/2025\nT-45.20\nPCOFFEE\n^\nD02/05/2025\nPNO AMOUNT\n^\nD03/05/2025\nT1,250.00\nPSALARY\n^\n"

	amounts, err := NewQIF().Load(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []types.RawAmount{
		{OriginID: "0", Label: "COFFEE", Value: "-45.20"},
		{OriginID: "2", Label: "SALARY", Value: "1,250.00"},
	}, amounts)
}

func TestLoadFilesPrefixesOriginsAndKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.csv", "Amount\n1.00\n2.00\n")
	second := writeFile(t, dir, "second.csv", "Amount\n3.00\n")

	amounts, err := LoadFiles(context.Background(), NewCSV(), []string{first, second}, Options{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, []types.RawAmount{
		{OriginID: first + ":0", Value: "1.00"},
		{OriginID: first + ":1", Value: "2.00"},
		{OriginID: second + ":0", Value: "3.00"},
	}, amounts)

	single, err := LoadFiles(context.Background(), NewCSV(), []string{second}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []types.RawAmount{{OriginID: "0", Value: "3.00"}}, single)
}

func TestLoadFilesErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.csv", "Total\n1.00\n")

	_, err := LoadFiles(context.Background(), NewCSV(), []string{bad}, Options{})
	assert.ErrorIs(t, err, combination.ErrConfiguration)

	_, err = LoadFiles(context.Background(), NewCSV(), []string{filepath.Join(dir, "missing.csv")}, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFiles(context.Background(), NewCSV(), nil, Options{})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"csv", "qif"}, r.List())
	f, ok := r.Get("qif")
	require.True(t, ok)
	assert.Equal(t, "qif", f.Name())

	_, ok = r.Get("xlsx")
	assert.False(t, ok)
}

func TestParseList(t *testing.T) {
	amounts := ParseList("100.00 150.00;\n95.35\t$1,000.00")

	assert.Equal(t, []types.RawAmount{
		{OriginID: "0", Value: "100.00"},
		{OriginID: "1", Value: "150.00"},
		{OriginID: "2", Value: "95.35"},
		{OriginID: "3", Value: "$1,000.00"},
	}, amounts)
}
