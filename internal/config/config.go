// Package config reads the notecanvas RC file.
package config

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/example/notecanvas/internal/theme"
)

// Canvas holds page settings.
type Canvas struct {
	Width, Height int
	// Background is flattened under exports. A zero alpha keeps the page
	// transparent.
	Background color.RGBA
}

// Tool holds the palette defaults a new canvas starts with.
type Tool struct {
	Color         color.RGBA
	Width         float64
	FontSize      float64
	RectThreshold float64
}

// Image bounds placed images.
type Image struct {
	MaxWidth, MaxHeight float64
}

// Notify selects which events raise desktop notifications.
type Notify struct {
	Save   bool
	Upload bool
	Copy   bool
}

// Config is the parsed configuration.
type Config struct {
	Theme     string
	SaveDir   string
	UploadURL string
	Format    string
	Canvas    Canvas
	Tool      Tool
	Image     Image
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Format: "png",
		Canvas: Canvas{Width: 800, Height: 600, Background: color.RGBA{255, 255, 255, 255}},
		Tool: Tool{
			Color:         color.RGBA{A: 255},
			Width:         2,
			FontSize:      16,
			RectThreshold: 2,
		},
		Image:  Image{MaxWidth: 400, MaxHeight: 400},
		Themes: make(map[string]*theme.Theme),
	}
}

// ApplyEnv overrides root keys from NOTECANVAS_* variables.
func (c *Config) ApplyEnv() {
	for key, dst := range map[string]*string{
		"NOTECANVAS_THEME":      &c.Theme,
		"NOTECANVAS_SAVE_DIR":   &c.SaveDir,
		"NOTECANVAS_UPLOAD_URL": &c.UploadURL,
		"NOTECANVAS_FORMAT":     &c.Format,
	} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
}

// String renders the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder
	for _, kv := range [][2]string{
		{"theme", c.Theme}, {"save_dir", c.SaveDir}, {"upload_url", c.UploadURL}, {"format", c.Format},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	sb.WriteString("\n[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	fmt.Fprintf(&sb, "background = %s\n", theme.FormatColor(c.Canvas.Background))

	sb.WriteString("\n[tool]\n")
	fmt.Fprintf(&sb, "color = %s\n", theme.FormatColor(c.Tool.Color))
	fmt.Fprintf(&sb, "width = %s\n", formatFloat(c.Tool.Width))
	fmt.Fprintf(&sb, "font_size = %s\n", formatFloat(c.Tool.FontSize))
	fmt.Fprintf(&sb, "rect_threshold = %s\n", formatFloat(c.Tool.RectThreshold))

	sb.WriteString("\n[image]\n")
	fmt.Fprintf(&sb, "max_width = %s\n", formatFloat(c.Image.MaxWidth))
	fmt.Fprintf(&sb, "max_height = %s\n", formatFloat(c.Image.MaxHeight))

	sb.WriteString("\n[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "upload = %v\n", c.Notify.Upload)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "\n[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.FormatColor(f.Color))
		}
	}
	return sb.String()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
