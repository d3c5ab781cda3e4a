package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
)

// assemblePDF slices a full-page screenshot into page-sized JPEG strips and
// lays them out inside the configured margins.
func assemblePDF(img image.Image, opts Options, title string, created time.Time) ([]byte, int, error) {
	pageW, pageH := opts.PageSizeMM()
	printW := pageW - 2*opts.MarginMM
	printH := pageH - 2*opts.MarginMM

	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	if imgW == 0 || imgH == 0 {
		return nil, 0, fmt.Errorf("%w: empty raster", ErrInvalidOutput)
	}
	mmPerPx := printW / float64(imgW)
	slicePx := int(math.Floor(printH / mmPerPx))
	if slicePx < 1 {
		slicePx = 1
	}

	// fpdf swaps the portrait size itself for "L"
	orientation := "P"
	if opts.Orientation == Landscape {
		orientation = "L"
	}
	portrait := pageSizes[opts.Format]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: portrait[0], Ht: portrait[1]},
	})
	pdf.SetCompression(opts.Compress)
	pdf.SetMargins(opts.MarginMM, opts.MarginMM, opts.MarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("resume-builder", true)
	pdf.SetCreationDate(created)

	quality := int(math.Round(opts.ImageQuality * 100))
	if quality < 1 {
		quality = 1
	}
	pages := 0
	for y := 0; y < imgH; y += slicePx {
		h := slicePx
		if y+h > imgH {
			h = imgH - y
		}
		strip := image.NewRGBA(image.Rect(0, 0, imgW, h))
		draw.Draw(strip, strip.Bounds(), img, image.Pt(bounds.Min.X, bounds.Min.Y+y), draw.Src)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, strip, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, fmt.Errorf("encode page %d: %w", pages+1, err)
		}

		name := fmt.Sprintf("page-%d", pages+1)
		imgOpts := fpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, opts.MarginMM, opts.MarginMM, printW, float64(h)*mmPerPx, false, imgOpts, 0, "")
		pages++
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), pages, nil
}
