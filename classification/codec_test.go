// ABOUTME: Tests for classification code parsing
// ABOUTME: Covers grammar acceptance, canonical ordering and first-match selection

package classification

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		marker  byte
		wantErr error
	}{
		{name: "single letter", raw: "1,a", want: "a", marker: '1'},
		{name: "sorted letters", raw: "3,a;b;c", want: "abc", marker: '3'},
		{name: "unsorted letters", raw: "3,c;a;b", want: "abc", marker: '3'},
		{name: "duplicate letters", raw: "2,b;b;a", want: "ab", marker: '2'},
		{name: "adjacent letters", raw: "2,ba;c", want: "abc", marker: '2'},
		{name: "marker not checked against count", raw: "9,a", want: "a", marker: '9'},
		{name: "compact form", raw: "2abc", want: "abc", marker: '2'},
		{name: "compact form unsorted", raw: "3cba", want: "abc", marker: '3'},
		{name: "empty", raw: "", wantErr: ErrNoMatchingComment},
		{name: "missing marker", raw: "abc", wantErr: ErrNoMatchingComment},
		{name: "empty letters", raw: "2,", wantErr: ErrNoMatchingComment},
		{name: "uppercase letters", raw: "2,A;B", wantErr: ErrNoMatchingComment},
		{name: "two digit marker", raw: "12,a", wantErr: ErrNoMatchingComment},
		{name: "free text", raw: "bought at the record fair", wantErr: ErrNoMatchingComment},
		{name: "separators only", raw: "2,;;", wantErr: ErrEmptyClassification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Parse(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, code.IsZero())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, code.String())
			assert.Equal(t, tt.marker, code.Marker())
		})
	}
}

func TestParseIsSorted(t *testing.T) {
	for _, raw := range []string{"1,z;y;x", "4,q;w;e;r", "2,m", "7,b;a;b;a"} {
		code, err := Parse(raw)
		require.NoError(t, err, raw)

		letters := []byte(code.String())
		sorted := slices.Clone(letters)
		slices.Sort(sorted)

		assert.Equal(t, string(sorted), code.String(), raw)
	}
}

func TestParseOrderIndependent(t *testing.T) {
	a, err := Parse("2abc")
	require.NoError(t, err)

	b, err := Parse("3cba")
	require.NoError(t, err)

	assert.Equal(t, "abc", a.String())
	assert.Equal(t, a.String(), b.String())
}

func TestCodeLetters(t *testing.T) {
	code, err := Parse("3,c;a;b")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, code.Letters())
	assert.True(t, code.Contains("b"))
	assert.False(t, code.Contains("d"))
	assert.False(t, code.Contains("ab"))
	assert.Empty(t, Code{}.Letters())
}

func TestFirstMatch(t *testing.T) {
	tests := []struct {
		name     string
		comments []string
		want     string
		wantErr  error
	}{
		{name: "single match", comments: []string{"2,a;b"}, want: "ab"},
		{name: "skips free text", comments: []string{"ripped from vinyl", "2,b;a"}, want: "ab"},
		{name: "first match wins", comments: []string{"1,z", "2,a;b"}, want: "z"},
		{name: "surrounding whitespace is not the grammar", comments: []string{" 1,c \n", "2,d"}, want: "d"},
		{name: "no comments", comments: nil, wantErr: ErrNoMatchingComment},
		{name: "no match", comments: []string{"8A - Energy 6", "abc"}, wantErr: ErrNoMatchingComment},
		{name: "first match empty", comments: []string{"2,;", "1,a"}, wantErr: ErrEmptyClassification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := FirstMatch(tt.comments)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, code.String())
		})
	}
}
