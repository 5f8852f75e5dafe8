package request

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxDim = 3000

func parse(t *testing.T, path, rawQuery string) (Image, error) {
	t.Helper()
	query, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	return Parse(path, query, testMaxDim)
}

func TestParseDefaults(t *testing.T) {
	img, err := parse(t, "/450x450", "")
	require.NoError(t, err)

	assert.Equal(t, 450, img.Width)
	assert.Equal(t, 450, img.Height)
	assert.Equal(t, DefaultBackground, img.Background)
	assert.Equal(t, MustColor("111827"), img.Foreground, "light default background gets dark text")
	assert.Equal(t, "450x450", img.Label)
	assert.Equal(t, FormatPNG, img.Format)
	assert.Zero(t, img.BorderWidth)
}

func TestParseFormatFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"/100x100", FormatPNG},
		{"/100x100.png", FormatPNG},
		{"/100x100.jpg", FormatJPEG},
		{"/100x100.jpeg", FormatJPEG},
		{"/100x100.webp", FormatWEBP},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			img, err := parse(t, tt.path, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Format)
			assert.Equal(t, "100x100", img.Label, "extension must not leak into the label")
		})
	}
}

func TestParseFormatQueryOverridesExtension(t *testing.T) {
	img, err := parse(t, "/100x100.png", "format=jpeg")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, img.Format)
}

func TestParseColors(t *testing.T) {
	img, err := parse(t, "/200x100", "bg=111827&fg=abc")
	require.NoError(t, err)
	assert.Equal(t, MustColor("111827"), img.Background)
	assert.Equal(t, MustColor("aabbcc"), img.Foreground)
}

func TestParseForegroundDerivedFromLuminance(t *testing.T) {
	light, err := parse(t, "/100x100", "bg=CCCCCC")
	require.NoError(t, err)
	assert.Equal(t, MustColor("111827"), light.Foreground)

	dark, err := parse(t, "/100x100", "bg=111111")
	require.NoError(t, err)
	assert.Equal(t, MustColor("F9FAFB"), dark.Foreground)
}

func TestParseBorder(t *testing.T) {
	img, err := parse(t, "/100x100", "brw=4&br=ff0000")
	require.NoError(t, err)
	assert.Equal(t, 4, img.BorderWidth)
	assert.Equal(t, MustColor("ff0000"), img.BorderColor)

	// border width alone defaults the color to black
	img, err = parse(t, "/100x100", "brw=2")
	require.NoError(t, err)
	assert.Equal(t, 2, img.BorderWidth)
	assert.Equal(t, Color{}, img.BorderColor)

	// border color without a width draws nothing and is normalized away
	img, err = parse(t, "/100x100", "br=ff0000")
	require.NoError(t, err)
	assert.Zero(t, img.BorderWidth)
	assert.Equal(t, Color{}, img.BorderColor)
}

func TestParseLabel(t *testing.T) {
	img, err := parse(t, "/100x100", "label=hello+world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", img.Label)

	// explicitly empty label suppresses the text
	img, err = parse(t, "/100x100", "label=")
	require.NoError(t, err)
	assert.Equal(t, "", img.Label)

	_, err = parse(t, "/100x100", "label="+strings.Repeat("a", 129))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsBadDimensions(t *testing.T) {
	for _, path := range []string{
		"/", "/abc", "/100", "/100x", "/x100", "/0x100", "/100x0",
		"/-1x100", "/100x100x100", "/1.5x20", "/01x10",
	} {
		t.Run(path, func(t *testing.T) {
			_, err := parse(t, path, "")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseRejectsOversizedDimensions(t *testing.T) {
	_, err := parse(t, "/3001x100", "")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = parse(t, "/100x3001", "")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = parse(t, "/3000x3000", "")
	assert.NoError(t, err)
}

func TestParseRejectsBadParameters(t *testing.T) {
	for _, rawQuery := range []string{
		"bg=nothex", "fg=12345", "brw=4&br=xyz", "brw=-1", "brw=256", "brw=abc", "format=gif",
	} {
		t.Run(rawQuery, func(t *testing.T) {
			_, err := parse(t, "/100x100", rawQuery)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseRejectsBadExtension(t *testing.T) {
	_, err := parse(t, "/100x100.gif", "")
	assert.ErrorIs(t, err, ErrInvalid)
}
