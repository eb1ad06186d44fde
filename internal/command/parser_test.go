package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danmakutv/server/internal/domain"
)

func TestParseDefaults(t *testing.T) {
	def := domain.Style{
		Position: domain.PositionScroll,
		Color:    "#FFFFFF",
		Size:     domain.SizeMedium,
	}

	assert.Equal(t, def, Parse(""))
	assert.Equal(t, def, Parse("   "))
	assert.Equal(t, def, Parse("garbage tokens here"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want domain.Style
	}{
		{
			name: "full command",
			cmd:  "ue red big",
			want: domain.Style{Position: domain.PositionTop, Color: "#FF0000", Size: domain.SizeBig},
		},
		{
			name: "english position alias",
			cmd:  "top red big",
			want: domain.Style{Position: domain.PositionTop, Color: "#FF0000", Size: domain.SizeBig},
		},
		{
			name: "bottom small",
			cmd:  "shita small",
			want: domain.Style{Position: domain.PositionBottom, Color: "#FFFFFF", Size: domain.SizeSmall},
		},
		{
			name: "case insensitive",
			cmd:  "UE Red BIG",
			want: domain.Style{Position: domain.PositionTop, Color: "#FF0000", Size: domain.SizeBig},
		},
		{
			name: "order insignificant",
			cmd:  "big red ue",
			want: domain.Style{Position: domain.PositionTop, Color: "#FF0000", Size: domain.SizeBig},
		},
		{
			name: "extra whitespace",
			cmd:  "  ue   red\tbig ",
			want: domain.Style{Position: domain.PositionTop, Color: "#FF0000", Size: domain.SizeBig},
		},
		{
			name: "first color wins",
			cmd:  "red blue",
			want: domain.Style{Position: domain.PositionScroll, Color: "#FF0000", Size: domain.SizeMedium},
		},
		{
			name: "unknown tokens ignored",
			cmd:  "huge ue neon",
			want: domain.Style{Position: domain.PositionTop, Color: "#FFFFFF", Size: domain.SizeMedium},
		},
		{
			name: "color only",
			cmd:  "green",
			want: domain.Style{Position: domain.PositionScroll, Color: "#00FF00", Size: domain.SizeMedium},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.cmd))
		})
	}
}
