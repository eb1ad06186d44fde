package domain

import "fmt"

// Position is the display mode of a comment. The set is closed: the
// scheduler switches over it exhaustively.
type Position int

const (
	PositionScroll Position = iota
	PositionTop
	PositionBottom
)

func (p Position) String() string {
	switch p {
	case PositionScroll:
		return "scroll"
	case PositionTop:
		return "top"
	case PositionBottom:
		return "bottom"
	}

	return fmt.Sprintf("Position(%d)", int(p))
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(text []byte) error {
	switch string(text) {
	case "scroll":
		*p = PositionScroll
	case "top":
		*p = PositionTop
	case "bottom":
		*p = PositionBottom
	default:
		return fmt.Errorf("unknown position %q", text)
	}

	return nil
}

type Size int

const (
	SizeSmall Size = iota
	SizeMedium
	SizeBig
)

func (s Size) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeBig:
		return "big"
	}

	return fmt.Sprintf("Size(%d)", int(s))
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	switch string(text) {
	case "small":
		*s = SizeSmall
	case "medium":
		*s = SizeMedium
	case "big":
		*s = SizeBig
	default:
		return fmt.Errorf("unknown size %q", text)
	}

	return nil
}

// FontPx is the rendered glyph height used for width estimation.
func (s Size) FontPx() float64 {
	switch s {
	case SizeSmall:
		return 16
	case SizeMedium:
		return 24
	case SizeBig:
		return 36
	}

	return 24
}

const ColorWhite = "#FFFFFF"

type Style struct {
	Position Position `json:"position"`
	Color    string   `json:"color"`
	Size     Size     `json:"size"`
}

func DefaultStyle() Style {
	return Style{
		Position: PositionScroll,
		Color:    ColorWhite,
		Size:     SizeMedium,
	}
}
