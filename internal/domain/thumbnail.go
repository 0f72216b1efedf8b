package domain

import (
	"strconv"
	"strings"
)

// Placeholders names the width/height tokens used by a thumbnail template.
type Placeholders struct {
	Width  string
	Height string
}

var (
	// BracePlaceholders is used by stream, category and channel templates.
	BracePlaceholders = Placeholders{Width: "{width}", Height: "{height}"}
	// PercentPlaceholders is used by video templates.
	PercentPlaceholders = Placeholders{Width: "%{width}", Height: "%{height}"}
)

// Rendition sizes, small to large.
var (
	SmallSize  = [2]int{320, 180}
	MediumSize = [2]int{640, 360}
	LargeSize  = [2]int{1920, 1080}
)

// DeriveThumbnails substitutes the three fixed sizes into template.
// An empty template yields three empty URLs.
func DeriveThumbnails(template string, p Placeholders) Thumbnail {
	if template == "" {
		return Thumbnail{}
	}
	return Thumbnail{
		Small:  p.render(template, SmallSize),
		Medium: p.render(template, MediumSize),
		Large:  p.render(template, LargeSize),
	}
}

func (p Placeholders) render(template string, size [2]int) string {
	r := strings.NewReplacer(
		p.Width, strconv.Itoa(size[0]),
		p.Height, strconv.Itoa(size[1]),
	)
	return r.Replace(template)
}
