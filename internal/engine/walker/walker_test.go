package walker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listing serves fixed pages; page i continues with cursor "c<i+1>".
type listing struct {
	pages [][]rawnode.Node
	fail  map[string]error // cursor → error
	calls int
}

func rows(prefix string, n int) []rawnode.Node {
	out := make([]rawnode.Node, n)
	for i := range out {
		out[i] = rawnode.From(map[string]any{"videoId": fmt.Sprintf("%s-%d", prefix, i)})
	}
	return out
}

func newListing(sizes ...int) *listing {
	l := &listing{fail: map[string]error{}}
	for i, n := range sizes {
		l.pages = append(l.pages, rows(fmt.Sprintf("p%d", i+1), n))
	}
	return l
}

func (l *listing) page(i int) upstream.ListingPage {
	p := upstream.ListingPage{Items: l.pages[i]}
	if i+1 < len(l.pages) {
		p.Cursor = fmt.Sprintf("c%d", i+1)
	}
	return p
}

func (l *listing) first(context.Context) (upstream.ListingPage, error) {
	return l.page(0), nil
}

func (l *listing) next(_ context.Context, prev upstream.ListingPage) (upstream.ListingPage, error) {
	l.calls++
	if err := l.fail[prev.Cursor]; err != nil {
		return upstream.ListingPage{}, err
	}
	var i int
	if _, err := fmt.Sscanf(prev.Cursor, "c%d", &i); err != nil {
		return upstream.ListingPage{}, err
	}
	return l.page(i), nil
}

func ids(items []rawnode.Node) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		id, _ := it.Str("videoId")
		out = append(out, id)
	}
	return out
}

func TestAdvanceClampsToLastPage(t *testing.T) {
	l := newListing(10, 10, 4)
	w := &Walker{Next: l.next}

	res, err := w.Advance(context.Background(), l.first, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Items, 4)
	assert.False(t, res.HasMore)
	assert.Equal(t, "p3-0", ids(res.Items)[0])
}

func TestAdvanceExactPage(t *testing.T) {
	l := newListing(10, 10, 4)
	w := &Walker{Next: l.next}

	res, err := w.Advance(context.Background(), l.first, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.True(t, res.HasMore)
	assert.Equal(t, 1, l.calls)

	res, err = w.Advance(context.Background(), l.first, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page, "target below 1 is page 1")
}

func TestAdvanceTruncatesToPageSize(t *testing.T) {
	l := newListing(10, 10)
	w := &Walker{Next: l.next}

	res, err := w.Advance(context.Background(), l.first, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2-0", "p2-1", "p2-2"}, ids(res.Items))
}

func TestAllCollectsEveryPage(t *testing.T) {
	l := newListing(10, 10, 4)
	w := &Walker{Next: l.next}

	items, err := w.All(context.Background(), l.first)
	require.NoError(t, err)
	assert.Len(t, items, 24)

	unique := map[string]bool{}
	for _, id := range ids(items) {
		unique[id] = true
	}
	assert.Len(t, unique, 24)
	assert.Equal(t, "p1-0", ids(items)[0])
	assert.Equal(t, "p3-3", ids(items)[23])
}

func TestEmptyContinuablePageTerminates(t *testing.T) {
	l := newListing(10, 0, 10)
	w := &Walker{Next: l.next}

	res, err := w.Advance(context.Background(), l.first, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.False(t, res.HasMore)

	items, err := w.All(context.Background(), l.first)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestFailedContinuationTerminates(t *testing.T) {
	l := newListing(10, 10, 10)
	l.fail["c2"] = upstream.Transport("continuation", "c2", errors.New("reset"))
	w := &Walker{Next: l.next}

	res, err := w.Advance(context.Background(), l.first, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.False(t, res.HasMore)

	l.calls = 0
	items, err := w.All(context.Background(), l.first)
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Equal(t, 2, l.calls, "exhaustion is terminal, no retry")
}

func TestFirstPageErrorIsReturned(t *testing.T) {
	w := &Walker{Next: func(context.Context, upstream.ListingPage) (upstream.ListingPage, error) {
		t.Fatal("continuation must not be called")
		return upstream.ListingPage{}, nil
	}}
	boom := upstream.NotFound("browse", "UCx", nil)
	_, err := w.Advance(context.Background(), func(context.Context) (upstream.ListingPage, error) {
		return upstream.ListingPage{}, boom
	}, 2, 0)
	assert.ErrorIs(t, err, upstream.ErrNotFound)

	_, err = w.All(context.Background(), func(context.Context) (upstream.ListingPage, error) {
		return upstream.ListingPage{}, boom
	})
	assert.ErrorIs(t, err, upstream.ErrNotFound)
}

func TestRepeatedCursorTerminates(t *testing.T) {
	calls := 0
	w := &Walker{Next: func(context.Context, upstream.ListingPage) (upstream.ListingPage, error) {
		calls++
		return upstream.ListingPage{Items: rows("loop", 2), Cursor: "same"}, nil
	}}
	first := func(context.Context) (upstream.ListingPage, error) {
		return upstream.ListingPage{Items: rows("p1", 2), Cursor: "same"}, nil
	}

	items, err := w.All(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, items, 4)

	res, err := w.Advance(context.Background(), first, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page)
	assert.False(t, res.HasMore)
}
