package upstream

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("HTTP 404")
	err := fmt.Errorf("get item: %w", NotFound("fetch_item", "abc", cause))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "not_found", Kind(err))
	assert.Contains(t, err.Error(), "fetch_item abc: not found: HTTP 404")

	var ue *Error
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, "abc", ue.ID)
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Unavailable("fetch_item", "x", nil), "unavailable"},
		{Transport("fetch_collection", "UC1", errors.New("dial")), "transport"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}

func TestListingPageDone(t *testing.T) {
	assert.True(t, ListingPage{}.Done())
	assert.False(t, ListingPage{Cursor: "c1"}.Done())
}
