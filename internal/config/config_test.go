package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = paper
save_dir = /tmp/notes
upload_url = "ws://localhost:8080/upload"
format = PDF

[canvas]
width = 1024
height = 768
background = transparent

[tool]
color = crimson
width = 4.5
font_size = 20
rect_threshold = 5

[image]
max_width = 320
max_height = 240

[notify]
save = true
copy = true

[theme.mine]
Page = #111111
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Theme != "paper" || cfg.SaveDir != "/tmp/notes" {
		t.Errorf("root keys: %+v", cfg)
	}
	if cfg.UploadURL != "ws://localhost:8080/upload" {
		t.Errorf("upload_url %q", cfg.UploadURL)
	}
	if cfg.Format != "pdf" {
		t.Errorf("format %q", cfg.Format)
	}
	if cfg.Canvas.Width != 1024 || cfg.Canvas.Height != 768 || cfg.Canvas.Background.A != 0 {
		t.Errorf("canvas %+v", cfg.Canvas)
	}
	if cfg.Tool.Color != (color.RGBA{220, 20, 60, 255}) || cfg.Tool.Width != 4.5 || cfg.Tool.FontSize != 20 || cfg.Tool.RectThreshold != 5 {
		t.Errorf("tool %+v", cfg.Tool)
	}
	if cfg.Image.MaxWidth != 320 || cfg.Image.MaxHeight != 240 {
		t.Errorf("image %+v", cfg.Image)
	}
	if !cfg.Notify.Save || cfg.Notify.Upload || !cfg.Notify.Copy {
		t.Errorf("notify %+v", cfg.Notify)
	}
	th, ok := cfg.Themes["mine"]
	if !ok {
		t.Fatal("theme 'mine' not loaded")
	}
	if th.Page != (color.RGBA{0x11, 0x11, 0x11, 255}) {
		t.Errorf("theme page %v", th.Page)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"[canvas]\nwidth = -3\n",
		"[tool]\ncolor = nope\n",
		"[notify]\nsave = maybe\n",
		"[image]\nmax_width = wide\n",
		"[tool]\nrect_threshold = NaN\n",
		"[image]\nmax_height = +Inf\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/notes
format = png

[canvas]
background = #FAFAFA80

[tool]
color = #336699
width = 3

[notify]
save = true
upload = true

[theme.custom]
Name = custom
Desk = #000000
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}
	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}
	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir || cfg.Format != cfg2.Format {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Canvas != cfg2.Canvas || cfg.Tool != cfg2.Tool || cfg.Image != cfg2.Image || cfg.Notify != cfg2.Notify {
		t.Errorf("section mismatch:\n%+v\n%+v", cfg, cfg2)
	}
	t1, t2 := cfg.Themes["custom"], cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatal("custom theme missing")
	}
	if *t1 != *t2 {
		t.Errorf("theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("NOTECANVAS_SAVE_DIR", "/env/dir")
	t.Setenv("NOTECANVAS_FORMAT", "pdf")
	cfg := New()
	cfg.SaveDir = "/config/dir"
	cfg.ApplyEnv()
	if cfg.SaveDir != "/env/dir" || cfg.Format != "pdf" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoaderOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.rc")
	if err := os.WriteFile(path, []byte("save_dir = /from/file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("v1", path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SaveDir != "/from/file" {
		t.Fatalf("save_dir %q", cfg.SaveDir)
	}
}

func TestLoaderDevLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".notecanvasrc"), []byte("theme = dark\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := NewLoader("v1.0.0", "").GetConfigPath(); got != "" {
		t.Fatalf("release build read %q", got)
	}
	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("theme %q", cfg.Theme)
	}
}
