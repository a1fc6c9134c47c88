package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"defaults", 0, 0, Params{Page: 1, Limit: 20}},
		{"negative", -3, -1, Params{Page: 1, Limit: 20}},
		{"capped", 2, 500, Params{Page: 2, Limit: 100}},
		{"kept", 3, 10, Params{Page: 3, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.page, tt.limit))
		})
	}
}

func TestParams_OffsetAndTotalPages(t *testing.T) {
	t.Parallel()

	p := Params{Page: 3, Limit: 10}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
}

func TestParse(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=abc", nil)

	assert.Equal(t, Params{Page: 2, Limit: DefaultLimit}, Parse(c))
}
