package source

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lox/bank-combination-finder/internal/qif"
	"github.com/lox/bank-combination-finder/internal/types"
)

// QIF reads bank exports in Quicken Interchange Format
type QIF struct{}

// NewQIF creates a new QIF format
func NewQIF() *QIF {
	return &QIF{}
}

// Name returns the name of the format
func (q *QIF) Name() string {
	return "qif"
}

// Load reads transaction amounts from a QIF file. Origin ids are transaction
// ordinals and the payee is used as the label.
func (q *QIF) Load(ctx context.Context, r io.Reader, opts Options) ([]types.RawAmount, error) {
	transactions, err := qif.ParseReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse QIF: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	amounts := make([]types.RawAmount, 0, len(transactions))
	for idx, t := range transactions {
		if strings.TrimSpace(t.Amount) == "" {
			continue
		}
		amounts = append(amounts, types.RawAmount{
			OriginID: strconv.Itoa(idx),
			Label:    t.Payee,
			Value:    t.Amount,
		})
	}

	return amounts, nil
}

// Ensure QIF implements the Format interface
var _ Format = (*QIF)(nil)
