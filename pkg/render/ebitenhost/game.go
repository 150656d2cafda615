//go:build ebiten

package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	menu "github.com/goliatone/go-menu"
)

// Game adapts a Manager to ebiten.Game. Build the Manager with
// menu.WithCanvas(game.Canvas) so text is measured with the drawing face.
type Game struct {
	Manager *menu.Manager
	Canvas  *Canvas
	Width   int
	Height  int

	poller Poller
}

// NewGame returns a Game with a fresh canvas. Attach the Manager before
// running it.
func NewGame(width, height int) *Game {
	return &Game{Canvas: NewCanvas(), Width: width, Height: height}
}

func (g *Game) Update() error {
	if g.Manager == nil {
		return nil
	}
	for _, msg := range g.poller.Poll() {
		g.Manager.HandleMessage(msg)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.Manager == nil {
		return
	}
	g.Canvas.Target = screen
	g.Manager.Draw()
	g.Canvas.Target = nil
}

func (g *Game) Layout(int, int) (int, int) {
	return g.Width, g.Height
}
