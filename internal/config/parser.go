package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/example/notecanvas/internal/theme"
)

// Parse reads an RC file: "key = value" lines grouped under [section]
// headers, with "#" and "//" comments. Unknown keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var th *theme.Theme
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			th = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				th = theme.Default()
				th.Name = name
				cfg.Themes[name] = th
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case th != nil:
			err = th.Set(key, value)
		case section == "":
			setRoot(cfg, key, value)
		case section == "canvas":
			err = setCanvas(&cfg.Canvas, key, value)
		case section == "tool":
			err = setTool(&cfg.Tool, key, value)
		case section == "image":
			err = setImage(&cfg.Image, key, value)
		case section == "notify":
			err = setNotify(&cfg.Notify, key, value)
		}
		if err != nil {
			name := section
			if name == "" {
				name = "root"
			}
			return nil, fmt.Errorf("line %d [%s]: %w", lineNo, name, err)
		}
	}
	return cfg, scanner.Err()
}

func setRoot(cfg *Config, key, value string) {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "upload_url":
		cfg.UploadURL = value
	case "format":
		cfg.Format = strings.ToLower(value)
	}
}

func setCanvas(c *Canvas, key, value string) error {
	switch key {
	case "width", "height":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "width" {
			c.Width = n
		} else {
			c.Height = n
		}
	case "background":
		col, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		c.Background = col
	}
	return nil
}

func setTool(t *Tool, key, value string) error {
	if key == "color" {
		col, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("color: %w", err)
		}
		t.Color = col
		return nil
	}
	var dst *float64
	switch key {
	case "width":
		dst = &t.Width
	case "font_size":
		dst = &t.FontSize
	case "rect_threshold":
		dst = &t.RectThreshold
	default:
		return nil
	}
	return setPositive(dst, key, value)
}

func setImage(im *Image, key, value string) error {
	switch key {
	case "max_width":
		return setPositive(&im.MaxWidth, key, value)
	case "max_height":
		return setPositive(&im.MaxHeight, key, value)
	}
	return nil
}

func setNotify(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "upload":
		n.Upload = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setPositive(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid %s %q", key, value)
	}
	*dst = f
	return nil
}
