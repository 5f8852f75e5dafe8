// Package image_renderer draws placeholder images with libvips: a solid
// background, an optional border, a centered label and a footer mark on
// wide images.
package image_renderer

import (
	"context"
	"fmt"

	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"

	"platzhalter/internal/request"
)

const footerText = "powered by platzhalter"

type Renderer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Renderer {
	return &Renderer{
		logger: logger,
	}
}

// Render encodes the request into image bytes. It is a pure function of
// the request: identical requests produce identical bytes.
func (r *Renderer) Render(ctx context.Context, img request.Image) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	base, err := vips.NewBlack(img.Width, img.Height, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create canvas: %w", err)
	}
	defer base.Close()

	// Black is single-band; a three-element Linear expands it to RGB in
	// the background color.
	if err := base.Linear([]float64{0, 0, 0}, img.Background.RGB(), nil); err != nil {
		return nil, "", fmt.Errorf("failed to fill background: %w", err)
	}
	if err := base.Cast(vips.BandFormatUchar, nil); err != nil {
		return nil, "", fmt.Errorf("failed to cast canvas: %w", err)
	}

	if img.BorderWidth > 0 {
		if err := r.drawBorder(base, img); err != nil {
			return nil, "", err
		}
	}

	if img.Label != "" {
		size := int(float64(img.Width) / float64(len(img.Label)) * 1.2)
		if err := r.drawText(base, img.Label, img.Foreground, size, 1.0, center, img); err != nil {
			return nil, "", fmt.Errorf("failed to draw label: %w", err)
		}
	}

	if img.Width >= 200 {
		size := clampInt(img.Width/len(footerText), 12, 40)
		if err := r.drawText(base, footerText, img.Foreground, size, 0.5, bottomRight, img); err != nil {
			return nil, "", fmt.Errorf("failed to draw footer: %w", err)
		}
	}

	data, err := r.export(base, img)
	if err != nil {
		return nil, "", err
	}
	return data, img.Format.ContentType(), nil
}

// drawBorder paints four filled strips along the edges.
func (r *Renderer) drawBorder(base *vips.Image, img request.Image) error {
	ink := img.BorderColor.RGB()
	bw := img.BorderWidth
	w, h := img.Width, img.Height

	rects := [][4]int{
		{0, 0, w, bw},      // top
		{0, h - bw, w, bw}, // bottom
		{0, 0, bw, h},      // left
		{w - bw, 0, bw, h}, // right
	}
	opts := vips.DefaultDrawRectOptions()
	opts.Fill = true
	for _, rect := range rects {
		if err := base.DrawRect(ink, rect[0], rect[1], rect[2], rect[3], opts); err != nil {
			return fmt.Errorf("failed to draw border: %w", err)
		}
	}
	return nil
}

type anchor int

const (
	center anchor = iota
	bottomRight
)

// drawText renders a text layer with Pango, tints it with the given color
// and opacity, and composites it over the base at the requested anchor.
func (r *Renderer) drawText(base *vips.Image, text string, color request.Color, size int, opacity float64, at anchor, img request.Image) error {
	if size < 4 {
		size = 4
	}

	font := fmt.Sprintf("sans bold %d", size)
	if at == bottomRight {
		font = fmt.Sprintf("sans %d", size)
	}

	textOpts := vips.DefaultTextOptions()
	textOpts.Font = font
	textOpts.Dpi = 72
	textOpts.Rgba = true

	layer, err := vips.NewText(text, textOpts)
	if err != nil {
		return fmt.Errorf("failed to render text: %w", err)
	}
	defer layer.Close()

	// Pango renders white on transparent; a multiplicative Linear tints
	// the white to the text color and scales the alpha for opacity.
	rgb := color.RGB()
	tint := []float64{rgb[0] / 255.0, rgb[1] / 255.0, rgb[2] / 255.0, opacity}
	if err := layer.Linear(tint, []float64{0, 0, 0, 0}, nil); err != nil {
		return fmt.Errorf("failed to tint text: %w", err)
	}
	if err := layer.Cast(vips.BandFormatUchar, nil); err != nil {
		return fmt.Errorf("failed to cast text: %w", err)
	}

	var x, y int
	switch at {
	case bottomRight:
		margin := 5 + img.BorderWidth
		x = img.Width - layer.Width() - margin
		y = img.Height - layer.Height() - margin
	default:
		x = (img.Width - layer.Width()) / 2
		y = (img.Height - layer.Height()) / 2
	}
	// Oversized labels stay anchored to the top-left instead of failing.
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	composite := vips.DefaultComposite2Options()
	composite.X = x
	composite.Y = y
	if err := base.Composite2(layer, vips.BlendModeOver, composite); err != nil {
		return fmt.Errorf("failed to composite text: %w", err)
	}
	return nil
}

func (r *Renderer) export(base *vips.Image, img request.Image) ([]byte, error) {
	switch img.Format {
	case request.FormatJPEG:
		// Compositing promotes the canvas to RGBA; JPEG carries no alpha.
		flatten := vips.DefaultFlattenOptions()
		flatten.Background = img.Background.RGB()
		if err := base.Flatten(flatten); err != nil {
			return nil, fmt.Errorf("failed to flatten: %w", err)
		}
		opts := vips.DefaultJpegsaveBufferOptions()
		opts.Q = 90
		opts.Interlace = false
		data, err := base.JpegsaveBuffer(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to export jpeg: %w", err)
		}
		return data, nil
	case request.FormatWEBP:
		data, err := base.WebpsaveBuffer(vips.DefaultWebpsaveBufferOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to export webp: %w", err)
		}
		return data, nil
	default:
		data, err := base.PngsaveBuffer(vips.DefaultPngsaveBufferOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to export png: %w", err)
		}
		return data, nil
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
