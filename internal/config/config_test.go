package config

import (
	"image/color"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
output_pattern = shot-{timestamp}.png
save_dir = /tmp/shots
marker_style = lettered
shadow = true

[notify]
save = true
copy = false
action = true

[style]
stroke_color = #FF8800
stroke_width = 6
fill_opacity = 0.3
font_size = 24

[action.upload]
command = curl -F file=@{file} https://paste.example.com
icon = cloud

[action.open]
command = xdg-open {file}
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.OutputPattern != "shot-{timestamp}.png" {
		t.Errorf("Expected output_pattern 'shot-{timestamp}.png', got %q", cfg.OutputPattern)
	}
	if cfg.SaveDir != "/tmp/shots" {
		t.Errorf("Expected save_dir '/tmp/shots', got %q", cfg.SaveDir)
	}
	if cfg.MarkerStyle != "lettered" {
		t.Errorf("Expected marker_style 'lettered', got %q", cfg.MarkerStyle)
	}
	if !cfg.Shadow {
		t.Error("Expected shadow to be true")
	}

	if !cfg.Notify.Save || cfg.Notify.Copy || !cfg.Notify.Action {
		t.Errorf("Unexpected notify flags: %+v", cfg.Notify)
	}

	want := color.RGBA{R: 0xFF, G: 0x88, B: 0x00, A: 0xFF}
	if cfg.Style.StrokeColor != want {
		t.Errorf("Unexpected stroke color: %+v", cfg.Style.StrokeColor)
	}
	if cfg.Style.StrokeWidth != 6 {
		t.Errorf("Expected stroke_width 6, got %g", cfg.Style.StrokeWidth)
	}
	if cfg.Style.FillOpacity != 0.3 {
		t.Errorf("Expected fill_opacity 0.3, got %g", cfg.Style.FillOpacity)
	}
	if cfg.Style.FontSize != 24 {
		t.Errorf("Expected font_size 24, got %g", cfg.Style.FontSize)
	}

	upload, ok := cfg.Actions["upload"]
	if !ok {
		t.Fatal("Expected action 'upload' to be loaded")
	}
	if !strings.Contains(upload.Command, "{file}") {
		t.Errorf("Upload command lost its placeholder: %q", upload.Command)
	}
	if upload.Icon != "cloud" {
		t.Errorf("Expected icon 'cloud', got %q", upload.Icon)
	}
	if _, ok := cfg.Actions["open"]; !ok {
		t.Error("Expected action 'open' to be loaded")
	}
}

func TestParseAlphaColor(t *testing.T) {
	cfg, err := Parse(strings.NewReader("[style]\nfill_color = #00FF0080\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := color.RGBA{G: 0xFF, A: 0x80}
	if cfg.Style.FillColor != want {
		t.Errorf("Unexpected fill color: %+v", cfg.Style.FillColor)
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("[style]\nstroke_color = red\n")); err == nil {
		t.Fatal("expected error for non-hex color")
	}
}

func TestCircular(t *testing.T) {
	input := `output_pattern = out-{timestamp}.png
save_dir = /home/user/shots
marker_style = numbered
shadow = true

[notify]
save = true
copy = false
action = true

[style]
stroke_color = #112233
stroke_width = 3
fill_color = #00FF0080
fill_opacity = 0.5
text_color = #FFFFFF
font_size = 18
marker_size = 12

[action.upload]
command = curl -F file=@{file} https://paste.example.com
icon = cloud
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	cfg2, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	if cfg.OutputPattern != cfg2.OutputPattern {
		t.Errorf("OutputPattern mismatch: %q vs %q", cfg.OutputPattern, cfg2.OutputPattern)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.MarkerStyle != cfg2.MarkerStyle {
		t.Errorf("MarkerStyle mismatch: %q vs %q", cfg.MarkerStyle, cfg2.MarkerStyle)
	}
	if cfg.Shadow != cfg2.Shadow {
		t.Errorf("Shadow mismatch: %v vs %v", cfg.Shadow, cfg2.Shadow)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Style != cfg2.Style {
		t.Errorf("Style mismatch: %+v vs %+v", cfg.Style, cfg2.Style)
	}
	if cfg.Actions["upload"] != cfg2.Actions["upload"] {
		t.Errorf("Action mismatch: %+v vs %+v", cfg.Actions["upload"], cfg2.Actions["upload"])
	}
}

func TestToolConfig(t *testing.T) {
	cfg := New()
	cfg.MarkerStyle = "lettered"
	cfg.Style.StrokeWidth = 8

	tc := cfg.ToolConfig()
	if !tc.MarkerLettered {
		t.Error("Expected lettered markers")
	}
	if tc.StrokeWidth != 8 {
		t.Errorf("Expected stroke width 8, got %g", tc.StrokeWidth)
	}
}
