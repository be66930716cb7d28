package translate

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 50
	defaultConcurrency = 3
)

// completeFunc sends one prompt and returns the model's raw text answer.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// batcher holds the request batching shared by every LLM provider. A
// provider only supplies complete.
type batcher struct {
	options  Options
	complete completeFunc
}

func (b *batcher) batchSize() int {
	if b.options.BatchSize > 0 {
		return b.options.BatchSize
	}
	return DefaultBatchSize
}

func (b *batcher) batches(items []TranslationItem) [][]TranslationItem {
	size := b.batchSize()
	var out [][]TranslationItem
	for i := 0; i < len(items); i += size {
		out = append(out, items[i:min(i+size, len(items))])
	}
	return out
}

// Translate sends batches one after another.
func (b *batcher) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return b.TranslateWithConcurrency(ctx, items, 1)
}

// Items are split into batches of BatchSize (default 50). Each batch becomes
// one API request; up to concurrency requests run at once.
func (b *batcher) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	batches := b.batches(items)
	results := make([][]TranslationResult, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			res, err := b.translateBatch(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []TranslationResult
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

func (b *batcher) translateBatch(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	responseText, err := b.complete(ctx, BuildPrompt(b.options, items))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}
	if responseText == "" {
		return nil, fmt.Errorf("%w: empty response", ErrTranslationFailed)
	}

	responseText = cleanJSONResponse(responseText)

	results, err := extractTranslationResults(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to parse JSON response: %v (response: %s)",
			ErrTranslationFailed,
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != len(items) {
		return nil, fmt.Errorf(
			"%w: expected %d results, got %d",
			ErrTranslationFailed,
			len(items),
			len(results),
		)
	}

	return results, nil
}
