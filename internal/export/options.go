package export

import (
	"fmt"
	"strings"
)

type PageFormat string

const (
	FormatA4     PageFormat = "a4"
	FormatLetter PageFormat = "letter"
	FormatLegal  PageFormat = "legal"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Mode selects how the page reaches the PDF.
type Mode string

const (
	// ModeRaster screenshots the page and embeds JPEG slices.
	ModeRaster Mode = "raster"
	// ModeVector uses the browser's print pipeline; ImageQuality and
	// Compress do not apply.
	ModeVector Mode = "vector"
)

// pageSizes in millimetres, portrait.
var pageSizes = map[PageFormat][2]float64{
	FormatA4:     {210, 297},
	FormatLetter: {215.9, 279.4},
	FormatLegal:  {215.9, 355.6},
}

// Options configures one export. Lower ImageQuality and Scale give smaller
// files at the cost of fidelity.
type Options struct {
	MarginMM     float64     `json:"margin_mm"`
	ImageQuality float64     `json:"image_quality"`
	Scale        float64     `json:"scale"`
	Format       PageFormat  `json:"format"`
	Orientation  Orientation `json:"orientation"`
	Compress     bool        `json:"compress"`
	Mode         Mode        `json:"mode"`
}

func DefaultOptions() Options {
	return Options{
		MarginMM:     10,
		ImageQuality: 0.98,
		Scale:        2,
		Format:       FormatA4,
		Orientation:  Portrait,
		Compress:     true,
		Mode:         ModeRaster,
	}
}

// Overrides carries caller supplied values; nil fields keep the defaults.
type Overrides struct {
	MarginMM     *float64 `json:"margin_mm,omitempty"`
	ImageQuality *float64 `json:"image_quality,omitempty"`
	Scale        *float64 `json:"scale,omitempty"`
	Format       *string  `json:"format,omitempty"`
	Orientation  *string  `json:"orientation,omitempty"`
	Compress     *bool    `json:"compress,omitempty"`
	Mode         *string  `json:"mode,omitempty"`
}

// Apply returns o with every non-nil override set.
func (o Options) Apply(ov Overrides) Options {
	if ov.MarginMM != nil {
		o.MarginMM = *ov.MarginMM
	}
	if ov.ImageQuality != nil {
		o.ImageQuality = *ov.ImageQuality
	}
	if ov.Scale != nil {
		o.Scale = *ov.Scale
	}
	if ov.Format != nil {
		o.Format = PageFormat(strings.ToLower(*ov.Format))
	}
	if ov.Orientation != nil {
		o.Orientation = Orientation(strings.ToLower(*ov.Orientation))
	}
	if ov.Compress != nil {
		o.Compress = *ov.Compress
	}
	if ov.Mode != nil {
		o.Mode = Mode(strings.ToLower(*ov.Mode))
	}
	return o
}

// Validate rejects values outside the supported ranges.
func (o Options) Validate() error {
	if _, ok := pageSizes[o.Format]; !ok {
		return fmt.Errorf("%w: unknown page format %q", ErrInvalidOptions, o.Format)
	}
	if o.Orientation != Portrait && o.Orientation != Landscape {
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidOptions, o.Orientation)
	}
	if o.Mode != ModeRaster && o.Mode != ModeVector {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, o.Mode)
	}
	if o.ImageQuality <= 0 || o.ImageQuality > 1 {
		return fmt.Errorf("%w: image quality must be in (0, 1]", ErrInvalidOptions)
	}
	if o.Scale < 0.5 || o.Scale > 4 {
		return fmt.Errorf("%w: scale must be in [0.5, 4]", ErrInvalidOptions)
	}
	w, h := o.PageSizeMM()
	if o.MarginMM < 0 || 2*o.MarginMM >= w || 2*o.MarginMM >= h {
		return fmt.Errorf("%w: margin %.1fmm does not fit the page", ErrInvalidOptions, o.MarginMM)
	}
	return nil
}

// PageSizeMM returns width and height after orientation.
func (o Options) PageSizeMM() (float64, float64) {
	s := pageSizes[o.Format]
	if o.Orientation == Landscape {
		return s[1], s[0]
	}
	return s[0], s[1]
}

// ViewportWidthPx is the CSS pixel width of the page at 96 dpi.
func (o Options) ViewportWidthPx() int {
	w, _ := o.PageSizeMM()
	return int(w/25.4*96 + 0.5)
}
