package collect_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
)

/* ───────── モック実装 ───────── */

type stubCollector struct {
	name  string
	items []entity.RawItem
	err   error
	delay time.Duration

	// ignoreCtx makes the collector sleep through cancellation
	ignoreCtx bool
	panicMsg  string
	gotLimit  int
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(ctx context.Context, _ string, limit int) ([]entity.RawItem, error) {
	s.gotLimit = limit
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		if s.ignoreCtx {
			time.Sleep(s.delay)
		} else {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return s.items, s.err
}

func makeItem(t *testing.T, source string, n int, content string) entity.RawItem {
	t.Helper()
	it, err := entity.NewRawItem(source, fmt.Sprintf("https://%s.example.com/%d", source, n), content, time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return it
}

func distinctItems(t *testing.T, source string, count int) []entity.RawItem {
	t.Helper()
	items := make([]entity.RawItem, count)
	for i := range items {
		items[i] = makeItem(t, source, i, fmt.Sprintf("%s story %d about topic%d with detail%d and angle%d", source, i, i, i, i))
	}
	return items
}

func itemIDs(items []entity.RawItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
