package game

import (
	"strings"

	"github.com/rocketscienceinc/chatgames-backend/internal/board"
)

const (
	altUserBoard = "User turn board"
	altHomeBoard = "Home turn board"
)

// FlexComponent - box or text node of a flex bubble.
type FlexComponent struct {
	Type     string          `json:"type"`
	Layout   string          `json:"layout,omitempty"`
	Text     string          `json:"text,omitempty"`
	Align    string          `json:"align,omitempty"`
	Wrap     bool            `json:"wrap,omitempty"`
	Contents []FlexComponent `json:"contents,omitempty"`
}

type FlexBubble struct {
	Type string        `json:"type"`
	Body FlexComponent `json:"body"`
}

func flexText(text string) FlexComponent {
	return FlexComponent{Type: "text", Text: text, Align: "center", Wrap: true}
}

// ticTacToeFlex - body.contents[row].contents[col] holds the tile mark.
func ticTacToeFlex(b board.TicTacToe) FlexBubble {
	rows := make([]FlexComponent, 0, b.Size())
	for row := range b.Size() {
		cells := make([]FlexComponent, 0, b.Size())
		for col := range b.Size() {
			cells = append(cells, flexText(b.At(board.Cell{Row: row, Col: col}).String()))
		}
		rows = append(rows, FlexComponent{Type: "box", Layout: "horizontal", Contents: cells})
	}

	return FlexBubble{
		Type: "bubble",
		Body: FlexComponent{Type: "box", Layout: "vertical", Contents: rows},
	}
}

// connectFourFlex - body.contents[col] holds the column marks top to bottom, one per line.
func connectFourFlex(b board.ConnectFour) FlexBubble {
	columns := make([]FlexComponent, 0, b.Cols())
	for col := range b.Cols() {
		marks := b.Column(col)
		rendered := make([]string, 0, len(marks))
		for _, mark := range marks {
			rendered = append(rendered, mark.String())
		}
		columns = append(columns, flexText(strings.Join(rendered, "\n")))
	}

	return FlexBubble{
		Type: "bubble",
		Body: FlexComponent{Type: "box", Layout: "horizontal", Contents: columns},
	}
}
