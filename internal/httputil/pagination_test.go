package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginationContext(query string) *gin.Context {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedOffset int
		expectedLimit  int
		expectError    bool
	}{
		{name: "defaults", query: "", expectedOffset: 0, expectedLimit: 50},
		{name: "explicit values", query: "offset=20&limit=10", expectedOffset: 20, expectedLimit: 10},
		{name: "maximum limit", query: "limit=100", expectedOffset: 0, expectedLimit: 100},
		{name: "negative offset", query: "offset=-1", expectError: true},
		{name: "zero limit", query: "limit=0", expectError: true},
		{name: "limit above maximum", query: "limit=101", expectError: true},
		{name: "non-numeric offset", query: "offset=abc", expectError: true},
		{name: "non-numeric limit", query: "limit=ten", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit, err := ParsePagination(paginationContext(tt.query))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}
