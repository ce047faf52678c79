package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Parse reads configuration from an io.Reader. Lines are key = value pairs;
// blank lines and lines starting with # or // are skipped. Section headers
// are [notify], [style] and one [action.NAME] per custom action. Unknown
// keys are ignored so configs stay forward-compatible.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentAction string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentAction = ""
			if strings.HasPrefix(currentSection, "action.") {
				currentAction = strings.TrimPrefix(currentSection, "action.")
				if _, ok := cfg.Actions[currentAction]; !ok {
					cfg.Actions[currentAction] = Action{}
				}
			}
			continue
		}

		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentAction != "":
			a := cfg.Actions[currentAction]
			switch key {
			case "command":
				a.Command = value
			case "icon":
				a.Icon = value
			}
			cfg.Actions[currentAction] = a
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "style":
			err = setStyleField(&cfg.Style, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "output_pattern":
		cfg.OutputPattern = value
	case "save_dir":
		cfg.SaveDir = value
	case "marker_style":
		cfg.MarkerStyle = value
	case "shadow":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		cfg.Shadow = b
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "action":
		n.Action = b
	}
	return nil
}

func setStyleField(s *Style, key, value string) error {
	switch key {
	case "stroke_color", "fill_color", "text_color":
		col, err := parseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		switch key {
		case "stroke_color":
			s.StrokeColor = col
		case "fill_color":
			s.FillColor = col
		case "text_color":
			s.TextColor = col
		}
	case "stroke_width", "fill_opacity", "font_size", "marker_size":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
		switch key {
		case "stroke_width":
			s.StrokeWidth = f
		case "fill_opacity":
			s.FillOpacity = f
		case "font_size":
			s.FontSize = f
		case "marker_size":
			s.MarkerSize = f
		}
	}
	return nil
}

// parseColor parses #RRGGBB via go-colorful and #RRGGBBAA with an explicit
// alpha byte.
func parseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	alpha := uint8(255)
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, err
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}
