// Package config reads and writes the markpix RC file. The format is a flat
// key = value file with [section] headers, the same shape as classic rc
// files; see Parse for the accepted syntax.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/markpix/internal/annotation"
)

// Notify holds per-event notification switches.
type Notify struct {
	Save   bool
	Copy   bool
	Action bool
}

// Action is a user-defined shell command run against an exported image. The
// {file} placeholder in Command is replaced with the exported file path.
type Action struct {
	Command string
	Icon    string
}

// Style holds the default annotation appearance loaded from the [style]
// section.
type Style struct {
	StrokeColor color.RGBA
	StrokeWidth float64
	FillColor   color.RGBA
	FillOpacity float64
	TextColor   color.RGBA
	FontSize    float64
	MarkerSize  float64
}

// Config holds the application configuration.
type Config struct {
	OutputPattern string // save path pattern, {timestamp} expands
	SaveDir       string
	MarkerStyle   string // "numbered" or "lettered"
	Shadow        bool
	Notify        Notify
	Style         Style
	Actions       map[string]Action
}

// New creates a Config with defaults.
func New() *Config {
	def := annotation.DefaultToolConfig()
	return &Config{
		OutputPattern: "markpix-{timestamp}.png",
		MarkerStyle:   "numbered",
		Style: Style{
			StrokeColor: def.StrokeColor,
			StrokeWidth: def.StrokeWidth,
			FillColor:   def.FillColor,
			FillOpacity: def.FillOpacity,
			TextColor:   def.StrokeColor,
			FontSize:    def.FontSize,
			MarkerSize:  def.MarkerSize,
		},
		Actions: make(map[string]Action),
	}
}

// ToolConfig converts the loaded style defaults into the editor's shared
// tool configuration record.
func (c *Config) ToolConfig() *annotation.ToolConfig {
	tc := annotation.DefaultToolConfig()
	tc.StrokeColor = c.Style.StrokeColor
	tc.StrokeWidth = c.Style.StrokeWidth
	tc.FillColor = c.Style.FillColor
	tc.FillOpacity = c.Style.FillOpacity
	tc.FontSize = c.Style.FontSize
	tc.MarkerSize = c.Style.MarkerSize
	tc.MarkerLettered = strings.EqualFold(c.MarkerStyle, "lettered")
	return tc
}

// String implements fmt.Stringer and returns the configuration in RC format.
// Parse(strings.NewReader(c.String())) round-trips.
func (c *Config) String() string {
	var sb strings.Builder

	if c.OutputPattern != "" {
		fmt.Fprintf(&sb, "output_pattern = %s\n", c.OutputPattern)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.MarkerStyle != "" {
		fmt.Fprintf(&sb, "marker_style = %s\n", c.MarkerStyle)
	}
	fmt.Fprintf(&sb, "shadow = %v\n", c.Shadow)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "action = %v\n", c.Notify.Action)
	sb.WriteString("\n")

	sb.WriteString("[style]\n")
	fmt.Fprintf(&sb, "stroke_color = %s\n", toHex(c.Style.StrokeColor))
	fmt.Fprintf(&sb, "stroke_width = %g\n", c.Style.StrokeWidth)
	fmt.Fprintf(&sb, "fill_color = %s\n", toHex(c.Style.FillColor))
	fmt.Fprintf(&sb, "fill_opacity = %g\n", c.Style.FillOpacity)
	fmt.Fprintf(&sb, "text_color = %s\n", toHex(c.Style.TextColor))
	fmt.Fprintf(&sb, "font_size = %g\n", c.Style.FontSize)
	fmt.Fprintf(&sb, "marker_size = %g\n", c.Style.MarkerSize)
	sb.WriteString("\n")

	// Sort action names for deterministic output.
	var names []string
	for name := range c.Actions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := c.Actions[name]
		fmt.Fprintf(&sb, "[action.%s]\n", name)
		fmt.Fprintf(&sb, "command = %s\n", a.Command)
		if a.Icon != "" {
			fmt.Fprintf(&sb, "icon = %s\n", a.Icon)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 || c.A == 0 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
