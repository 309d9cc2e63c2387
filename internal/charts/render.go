package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default preview size
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// ErrNoData is returned when a figure has nothing to draw
var ErrNoData = errors.New("figure has no data")

var (
	barFill   = color.RGBA{R: 56, G: 189, B: 248, A: 204}
	trendLine = color.RGBA{R: 248, G: 113, B: 113, A: 255}
)

// RenderPNG rasterises fig and writes it to w as PNG.
// Traces on the secondary y axis are drawn in a second panel below the first.
func RenderPNG(w io.Writer, fig *Figure, width, height vg.Length) error {
	if fig == nil || !fig.HasData() {
		return ErrNoData
	}

	var primary, secondary []Trace
	for _, t := range fig.Data {
		if t.YAxis == "y2" {
			secondary = append(secondary, t)
		} else {
			primary = append(primary, t)
		}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)

	top, err := buildPlot(fig.Layout.Title, fig.Layout.XAxis.Title, fig.Layout.YAxis.Title, primary)
	if err != nil {
		return err
	}

	if len(secondary) == 0 {
		top.Draw(dc)
	} else {
		yTitle := ""
		if fig.Layout.YAxis2 != nil {
			yTitle = fig.Layout.YAxis2.Title
		}
		bottom, err := buildPlot("", fig.Layout.XAxis.Title, yTitle, secondary)
		if err != nil {
			return err
		}

		tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 4}
		canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, dc)
		top.Draw(canvases[0][0])
		bottom.Draw(canvases[1][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// buildPlot lays out traces on one plot. When a bar trace is present the x axis
// is nominal and every trace is positioned by the bar categories.
func buildPlot(title, xTitle, yTitle string, traces []Trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	var categories []string
	index := map[string]int{}
	for _, t := range traces {
		if t.Type != "bar" {
			continue
		}
		for _, x := range t.X {
			label := fmt.Sprint(x)
			if _, ok := index[label]; !ok {
				index[label] = len(categories)
				categories = append(categories, label)
			}
		}
	}
	nominal := len(categories) > 0

	for i, t := range traces {
		if t.Type == "bar" {
			values := make(plotter.Values, len(categories))
			for j, x := range t.X {
				if j < len(t.Y) {
					values[index[fmt.Sprint(x)]] = t.Y[j]
				}
			}

			bars, err := plotter.NewBarChart(values, vg.Points(20))
			if err != nil {
				return nil, fmt.Errorf("failed to build bar chart %q: %w", t.Name, err)
			}
			bars.Color = barFill
			bars.LineStyle.Width = vg.Length(0)
			p.Add(bars)
			p.Legend.Add(t.Name, bars)
			continue
		}

		points := make(plotter.XYs, 0, len(t.Y))
		for j, x := range t.X {
			if j >= len(t.Y) {
				break
			}
			var xv float64
			if nominal {
				pos, ok := index[fmt.Sprint(x)]
				if !ok {
					continue
				}
				xv = float64(pos)
			} else {
				v, ok := toFloat(x)
				if !ok {
					continue
				}
				xv = v
			}
			points = append(points, plotter.XY{X: xv, Y: t.Y[j]})
		}
		if len(points) == 0 {
			continue
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return nil, fmt.Errorf("failed to build line %q: %w", t.Name, err)
		}
		line.Width = vg.Points(2)
		line.Color = plotutil.Color(i)
		if t.Line != nil && t.Line.Dash == "dash" {
			line.Color = trendLine
			line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		p.Add(line)
		p.Legend.Add(t.Name, line)
	}

	if nominal {
		p.NominalX(categories...)
	}

	return p, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
