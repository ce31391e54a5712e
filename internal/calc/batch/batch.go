// Package batch runs many pressure-drop cases on a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"sync"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/gas"
)

// MaxItems caps one batch.
const MaxItems = 1000

var (
	ErrEmpty    = errors.New("no items")
	ErrTooLarge = errors.New("too many items")
)

type DropBatchInput struct {
	Items []gas.DropInput `json:"items"`
}

type ItemError struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// Item is the outcome of Items[Index]: exactly one of Result and Error is set.
type Item struct {
	Index  int             `json:"index"`
	Result *gas.DropResult `json:"result,omitempty"`
	Error  *ItemError      `json:"error,omitempty"`
}

type DropBatchResult struct {
	Count  int    `json:"count"`
	Failed int    `json:"failed"`
	Choked int    `json:"choked"`
	Items  []Item `json:"items"`
}

type Runner struct {
	Workers int
	Options gas.Options
}

// Run solves every item; results keep the input order. A cancelled context
// stops dispatch and marks the remaining items with the context error.
func (rn *Runner) Run(ctx context.Context, in DropBatchInput) (DropBatchResult, error) {
	if len(in.Items) == 0 {
		return DropBatchResult{}, ErrEmpty
	}
	if len(in.Items) > MaxItems {
		return DropBatchResult{}, ErrTooLarge
	}
	workers := rn.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(in.Items) {
		workers = len(in.Items)
	}

	items := make([]Item, len(in.Items))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = rn.solve(i, in.Items[i])
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(in.Items); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	for i := next; i < len(in.Items); i++ {
		items[i] = Item{Index: i, Error: &ItemError{Error: ctx.Err().Error()}}
	}

	out := DropBatchResult{Count: len(items), Items: items}
	for _, it := range items {
		if it.Error != nil {
			out.Failed++
		} else if it.Result.IsChoked {
			out.Choked++
		}
	}
	return out, nil
}

func (rn *Runner) solve(i int, in gas.DropInput) Item {
	res, err := gas.CalculateDrop(in, rn.Options)
	if err != nil {
		return Item{Index: i, Error: &ItemError{Error: err.Error(), Type: gas.ErrorType(err)}}
	}
	return Item{Index: i, Result: &res}
}
