// Package request holds the parsed placeholder image request and the
// strict parsing that turns a URL path and query into one.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalid wraps every parse failure so the HTTP layer can map the
// whole family to a 400 without inspecting messages.
var ErrInvalid = errors.New("invalid image request")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Format is the requested output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWEBP Format = "webp"
)

func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWEBP:
		return "image/webp"
	default:
		return "image/png"
	}
}

// DefaultBackground is used when no bg parameter is given.
var DefaultBackground = MustColor("FFD8C2")

// Text colors picked by background luminance when no fg parameter is given.
var (
	darkText  = MustColor("111827")
	lightText = MustColor("F9FAFB")
)

const maxLabelLength = 128

// Image is one fully resolved placeholder request. All defaulting happens
// during Parse, so two requests that would render the same pixels compare
// equal field by field.
type Image struct {
	Width  int
	Height int

	Background Color
	Foreground Color

	// BorderWidth of zero means no border; BorderColor is only
	// meaningful when BorderWidth is positive.
	BorderColor Color
	BorderWidth int

	Label  string
	Format Format
}

var dimensionRe = regexp.MustCompile(`^(?P<width>[1-9][0-9]*)x(?P<height>[1-9][0-9]*)$`)

// Parse builds an Image from the path segment (e.g. "450x450" or
// "450x450.png") and the request query. maxDim bounds both dimensions.
func Parse(path string, query url.Values, maxDim int) (Image, error) {
	dims, format, err := splitFormat(path)
	if err != nil {
		return Image{}, err
	}
	if f := query.Get("format"); f != "" {
		format, err = parseFormat(f)
		if err != nil {
			return Image{}, err
		}
	}

	caps := dimensionRe.FindStringSubmatch(dims)
	if caps == nil {
		return Image{}, invalidf("dimensions %q: want {width}x{height}", dims)
	}
	width, err := strconv.Atoi(caps[1])
	if err != nil {
		return Image{}, invalidf("width %q: %v", caps[1], err)
	}
	height, err := strconv.Atoi(caps[2])
	if err != nil {
		return Image{}, invalidf("height %q: %v", caps[2], err)
	}
	if width > maxDim || height > maxDim {
		return Image{}, invalidf("max dimension is %dx%d", maxDim, maxDim)
	}

	img := Image{
		Width:      width,
		Height:     height,
		Background: DefaultBackground,
		Label:      dims,
		Format:     format,
	}

	if bg := query.Get("bg"); bg != "" {
		if img.Background, err = ParseColor(bg); err != nil {
			return Image{}, err
		}
	}

	// Foreground is resolved eagerly so an explicit fg equal to the
	// derived one normalizes to the identical request.
	if img.Background.IsLight() {
		img.Foreground = darkText
	} else {
		img.Foreground = lightText
	}
	if fg := query.Get("fg"); fg != "" {
		if img.Foreground, err = ParseColor(fg); err != nil {
			return Image{}, err
		}
	}

	// A border is drawn only when brw is given; br alone changes nothing.
	if brw := query.Get("brw"); brw != "" {
		w, err := strconv.Atoi(brw)
		if err != nil || w < 0 || w > 255 {
			return Image{}, invalidf("border width %q: want 0..255", brw)
		}
		img.BorderWidth = w
	}
	if img.BorderWidth > 0 {
		if br := query.Get("br"); br != "" {
			if img.BorderColor, err = ParseColor(br); err != nil {
				return Image{}, err
			}
		}
	}

	if label, ok := labelParam(query); ok {
		if len(label) > maxLabelLength {
			return Image{}, invalidf("label longer than %d bytes", maxLabelLength)
		}
		img.Label = label
	}

	return img, nil
}

// labelParam distinguishes "label absent" from "label explicitly empty";
// an empty label suppresses the text entirely.
func labelParam(query url.Values) (string, bool) {
	if _, ok := query["label"]; !ok {
		return "", false
	}
	return query.Get("label"), true
}

func splitFormat(path string) (dims string, format Format, err error) {
	dims = strings.TrimPrefix(path, "/")
	format = FormatPNG
	if i := strings.LastIndexByte(dims, '.'); i >= 0 {
		format, err = parseFormat(dims[i+1:])
		if err != nil {
			return "", "", err
		}
		dims = dims[:i]
	}
	return dims, format, nil
}

func parseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", invalidf("unsupported format %q", s)
	}
}
