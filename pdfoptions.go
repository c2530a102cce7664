package web2pdf

import "strings"

// pixelsPerInch is the CSS reference resolution.
const pixelsPerInch = 96.0

// pageDimensions maps page sizes to portrait width and height in inches.
var pageDimensions = map[string][2]float64{
	PageSizeA4:     {8.27, 11.69},
	PageSizeLetter: {8.5, 11},
	PageSizeLegal:  {8.5, 14},
}

// resolvePageDimensions returns paper width, height and margin in inches.
// A nil page uses DefaultPageSettings. When WidthPx is set the width comes
// from it and the height from contentHeightPx; a non-positive content height
// falls back to the portrait height of the configured size.
func resolvePageDimensions(page *PageSettings, contentHeightPx float64) (w, h, margin float64) {
	if page == nil {
		page = DefaultPageSettings()
	}

	size := strings.ToLower(page.Size)
	dims, ok := pageDimensions[size]
	if !ok {
		dims = pageDimensions[PageSizeA4]
	}
	w, h = dims[0], dims[1]
	margin = page.Margin

	if page.WidthPx > 0 {
		w = float64(page.WidthPx) / pixelsPerInch
		if contentHeightPx > 0 {
			// Margins eat into the printable area; grow the paper so the
			// content still fits on a single page.
			h = contentHeightPx/pixelsPerInch + 2*margin
		}
		return w, h, margin
	}

	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		w, h = h, w
	}
	return w, h, margin
}

// buildPrintOptions assembles the engine-neutral print request.
// Background graphics are always printed.
func buildPrintOptions(page *PageSettings, contentHeightPx float64) PrintOptions {
	w, h, margin := resolvePageDimensions(page, contentHeightPx)
	return PrintOptions{
		PaperWidth:      w,
		PaperHeight:     h,
		MarginTop:       margin,
		MarginBottom:    margin,
		MarginLeft:      margin,
		MarginRight:     margin,
		PrintBackground: true,
	}
}
