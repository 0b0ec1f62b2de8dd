package html

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

const (
	chartWidth  = 800
	chartHeight = 450

	chartLeft   = 64
	chartRight  = 32
	chartTop    = 56
	chartBottom = 52

	chartGridLines = 5
	chartHeadroom  = 1.25
	lineWidth      = 3
	markerRadius   = 4
)

var (
	chartBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	chartLine       = color.RGBA{0x15, 0x65, 0xc0, 0xff}
	chartFill       = color.RGBA{0xdc, 0xeb, 0xfa, 0xff}
	chartGrid       = color.RGBA{0xd0, 0xd7, 0xde, 0xff}
	chartAxis       = color.RGBA{0x57, 0x60, 0x6a, 0xff}
	chartText       = color.RGBA{0x1f, 0x23, 0x28, 0xff}
)

type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// RenderChart draws points as a labelled line chart and writes it to dest as PNG.
func (r *Renderer) RenderChart(ctx context.Context, title string, points []domain.RevenuePoint, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(points) < 2 {
		return fmt.Errorf("revenue chart needs at least two points: %w", domain.ErrInvalidInput)
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b domain.RevenuePoint) int { return a.Year - b.Year })
	img := drawRevenueChart(title, sorted)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode chart: %w", err)
	}
	return f.Close()
}

// drawRevenueChart plots year-ordered points on a zero-based value axis.
func drawRevenueChart(title string, points []domain.RevenuePoint) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fillRect(img, img.Bounds(), chartBackground)

	plot := image.Rect(chartLeft, chartTop, chartWidth-chartRight, chartHeight-chartBottom)

	top := 0.0
	for _, p := range points {
		top = math.Max(top, p.ValueBilUSD)
	}
	top *= chartHeadroom
	if top <= 0 {
		top = 1
	}
	first := points[0].Year
	span := float64(points[len(points)-1].Year - first)
	if span == 0 {
		span = 1
	}

	at := func(p domain.RevenuePoint) image.Point {
		v := math.Max(p.ValueBilUSD, 0)
		return image.Pt(
			plot.Min.X+int(math.Round(float64(p.Year-first)/span*float64(plot.Dx()))),
			plot.Max.Y-int(math.Round(v/top*float64(plot.Dy()))),
		)
	}
	pts := make([]image.Point, len(points))
	for i, p := range points {
		pts[i] = at(p)
	}

	// dashed grid with value labels
	for i := 0; i <= chartGridLines; i++ {
		y := plot.Max.Y - int(math.Round(float64(i)/chartGridLines*float64(plot.Dy())))
		for x := plot.Min.X; x < plot.Max.X; x += 8 {
			fillRect(img, image.Rect(x, y, min(x+4, plot.Max.X), y+1), chartGrid)
		}
		label := strconv.FormatFloat(top*float64(i)/chartGridLines, 'f', 1, 64)
		drawText(img, label, plot.Min.X-8, y+4, alignRight, chartAxis)
	}

	for i := 1; i < len(pts); i++ {
		fillUnder(img, pts[i-1], pts[i], plot.Max.Y)
	}

	fillRect(img, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y+1), chartAxis)
	fillRect(img, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X, plot.Max.Y+1), chartAxis)

	for i := 1; i < len(pts); i++ {
		drawLine(img, pts[i-1], pts[i], lineWidth, chartLine)
	}

	for i, p := range points {
		pt := pts[i]
		drawDot(img, pt, markerRadius, chartLine)
		drawText(img, strconv.FormatFloat(p.ValueBilUSD, 'f', 2, 64), pt.X, pt.Y-10, alignCenter, chartText)
		fillRect(img, image.Rect(pt.X, plot.Max.Y, pt.X+1, plot.Max.Y+5), chartAxis)
		drawText(img, strconv.Itoa(p.Year), pt.X, plot.Max.Y+20, alignCenter, chartAxis)
	}

	drawText(img, title, chartWidth/2, 28, alignCenter, chartText)
	drawText(img, "USD bn", plot.Min.X, plot.Min.Y-12, alignRight, chartAxis)
	drawText(img, "Year", plot.Min.X+plot.Dx()/2, chartHeight-10, alignCenter, chartAxis)
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// fillUnder shades the area between segment a-b and the baseline.
func fillUnder(img *image.RGBA, a, b image.Point, base int) {
	if b.X == a.X {
		return
	}
	for x := a.X; x <= b.X; x++ {
		y := a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
		fillRect(img, image.Rect(x, y, x+1, base), chartFill)
	}
}

// drawLine strokes a-b with a square brush using Bresenham's algorithm.
func drawLine(img *image.RGBA, a, b image.Point, width int, c color.Color) {
	dx, dy := absInt(b.X-a.X), -absInt(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	half := width / 2
	e := dx + dy
	for {
		fillRect(img, image.Rect(a.X-half, a.Y-half, a.X-half+width, a.Y-half+width), c)
		if a == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

func drawDot(img *image.RGBA, center image.Point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

// drawText writes s with its baseline at y, anchored at x by align.
func drawText(img *image.RGBA, s string, x, y int, align textAlign, c color.Color) {
	face := basicfont.Face7x13
	switch align {
	case alignCenter:
		x -= font.MeasureString(face, s).Ceil() / 2
	case alignRight:
		x -= font.MeasureString(face, s).Ceil()
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
