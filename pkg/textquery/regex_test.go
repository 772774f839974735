package textquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingPage is trimmed from the article listing page script block.
var listingPage = []byte(`<script>
wx.cgiData = {
	user_name:"gh_0123456789ab",
	nick_name:"Demo Account",
	ticket:"f3a2c1d0e9b8",
	time:"1392706000",
};
</script>`)

func TestQueryRegex(t *testing.T) {
	t.Run("with capture group", func(t *testing.T) {
		result, err := QueryRegex(listingPage, `(\w+_name):`, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, []string{"user_name", "nick_name"}, result.Values)
	})

	t.Run("without capture group", func(t *testing.T) {
		result, err := QueryRegex(listingPage, `\d{10}`, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"1392706000"}, result.Values)
	})

	t.Run("max results", func(t *testing.T) {
		result, err := QueryRegex(listingPage, `(\w+_name):`, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
	})

	t.Run("no matches", func(t *testing.T) {
		result, err := QueryRegex(listingPage, `zzz`, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
		assert.NotNil(t, result.Values)
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := QueryRegex(listingPage, `[invalid`, 0)
		assert.Error(t, err)
	})

	t.Run("mode is regex", func(t *testing.T) {
		result, err := QueryRegex(listingPage, `\w+`, 1)
		require.NoError(t, err)
		assert.Equal(t, ModeRegex, result.Mode)
	})
}

func TestFirstMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
		wantOK  bool
	}{
		{"ticket", `ticket:"(.*?)",`, "f3a2c1d0e9b8", true},
		{"user name", `user_name:"(.*?)",`, "gh_0123456789ab", true},
		{"missing", `token:"(.*?)",`, "", false},
		{"invalid", `(`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstMatch(listingPage, tt.pattern)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
