// Package command parses the free-text style command attached to a
// comment submission ("ue red big"). The grammar is permissive: unknown
// tokens are ignored, order and extra whitespace are insignificant.
package command

import (
	"strings"

	"github.com/danmakutv/server/internal/domain"
)

var colorTable = map[string]string{
	"white":  "#FFFFFF",
	"red":    "#FF0000",
	"pink":   "#FF8080",
	"orange": "#FFC000",
	"yellow": "#FFFF00",
	"green":  "#00FF00",
	"cyan":   "#00FFFF",
	"blue":   "#0000FF",
	"purple": "#C000FF",
	"black":  "#000000",
}

// Parse resolves a command string into a fully-populated style. An empty
// command yields the default {scroll, white, medium}.
func Parse(cmd string) domain.Style {
	style := domain.DefaultStyle()

	colorSet := false
	for _, token := range strings.Fields(strings.ToLower(cmd)) {
		switch token {
		case "ue", "top":
			style.Position = domain.PositionTop
		case "shita", "bottom":
			style.Position = domain.PositionBottom
		case "small":
			style.Size = domain.SizeSmall
		case "big":
			style.Size = domain.SizeBig
		default:
			// first matching color token wins
			if hex, ok := colorTable[token]; ok && !colorSet {
				style.Color = hex
				colorSet = true
			}
		}
	}

	return style
}
