package render

import (
	"strconv"
	"strings"
)

// Color is a six digit RGB hex value without the leading '#'.
type Color string

// RGB splits the color into its components. Malformed values map to black.
func (c Color) RGB() (int, int, int) {
	hex := strings.TrimPrefix(string(c), "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// Hex returns the upper-case hex form used by OOXML.
func (c Color) Hex() string {
	return strings.ToUpper(strings.TrimPrefix(string(c), "#"))
}

// RenderStyle holds the fixed look shared by every renderer. Sizes are points.
type RenderStyle struct {
	TitleSize        float64
	HeadingSize      float64
	BodySize         float64
	TableHeaderSize  float64
	TableBodySize    float64
	FooterSize       float64
	SheetTitleSize   float64
	SheetHeadingSize float64

	Accent     Color
	HeaderText Color
	BodyFill   Color
	Grid       Color
	Muted      Color
	Text       Color
}

const (
	AccentColor     Color = "00FF88"
	HeaderTextColor Color = "0A0F1A"
	BeigeColor      Color = "F5F5DC"
	GreyColor       Color = "808080"
	BlackColor      Color = "000000"
)

// DefaultStyle returns the house style.
func DefaultStyle() RenderStyle {
	return RenderStyle{
		TitleSize:        24,
		HeadingSize:      16,
		BodySize:         10,
		TableHeaderSize:  10,
		TableBodySize:    8,
		FooterSize:       8,
		SheetTitleSize:   18,
		SheetHeadingSize: 14,
		Accent:           AccentColor,
		HeaderText:       HeaderTextColor,
		BodyFill:         BeigeColor,
		Grid:             BlackColor,
		Muted:            GreyColor,
		Text:             BlackColor,
	}
}

// RunStyle captures inline run formatting for word-processor output.
// Size is in half-points.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

// RunStyles maps document elements to run formatting.
func (s RenderStyle) RunStyles() map[string]RunStyle {
	half := func(pt float64) int { return int(pt * 2) }
	return map[string]RunStyle{
		"title": {
			Bold:  true,
			Size:  half(s.TitleSize),
			Color: s.Accent.Hex(),
		},
		"heading": {
			Bold:  true,
			Size:  half(s.HeadingSize),
			Color: s.Accent.Hex(),
		},
		"metaLabel": {
			Color: s.Muted.Hex(),
		},
		"tableHeader": {
			Bold:  true,
			Size:  half(s.TableHeaderSize),
			Color: s.HeaderText.Hex(),
		},
		"tableBody": {
			Size: half(s.TableBodySize),
		},
		"footer": {
			Italic: true,
			Size:   half(s.FooterSize),
			Color:  s.Muted.Hex(),
		},
	}
}
