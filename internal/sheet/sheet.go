// Package sheet provides the secondary tabular sink that mirrors flattened
// submission rows, in the spirit of an exported spreadsheet.
package sheet

import "context"

// Sink appends tabular rows. Implementations must be safe for concurrent
// use; appends carry the caller's deadline. Reading back is a concrete
// capability of adapters that support it, not part of the contract.
type Sink interface {
	AppendRows(ctx context.Context, rows [][]string) error
}

// Nop discards appends, for deployments without a configured sheet.
type Nop struct{}

// AppendRows discards the rows.
func (Nop) AppendRows(context.Context, [][]string) error {
	return nil
}
