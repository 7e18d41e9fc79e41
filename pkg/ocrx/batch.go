package ocrx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
)

// BuildAll builds independent works concurrently. Summaries are returned in
// request order; a failed work leaves a nil entry and contributes to the
// joined error. Requests that map to the same directory are rejected
// before anything is written.
func (e *Engine) BuildAll(ctx context.Context, reqs []WorkRequest) ([]*Summary, error) {
	now := e.now()
	seen := make(map[string]int, len(reqs))
	resolved := make([]WorkRequest, len(reqs))
	for i, req := range reqs {
		name := WorkName(req.Name, now)
		if j, dup := seen[name]; dup {
			return nil, fmt.Errorf("ocrx: requests %d and %d both write %s: %w", j, i, name, internalerr.ErrWorkBusy)
		}
		seen[name] = i
		req.Name = name
		resolved[i] = req
	}

	size := e.workers
	if size > len(reqs) {
		size = len(reqs)
	}
	if size < 1 {
		return []*Summary{}, nil
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	summaries := make([]*Summary, len(resolved))
	errs := make([]error, len(resolved))
	var wg sync.WaitGroup
	for i, req := range resolved {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = fmt.Errorf("ocrx: work %s: %w", req.Name, err)
				return
			}
			sum, err := e.Build(ctx, req)
			if err != nil {
				e.logger.Error("work failed", "work", req.Name, "err", err)
				errs[i] = err
				return
			}
			summaries[i] = sum
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("ocrx: work %s: submit: %w", req.Name, err)
		}
	}
	wg.Wait()

	return summaries, errors.Join(errs...)
}
