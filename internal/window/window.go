//go:build cgo || windows || darwin

package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/oblq/gauge/internal/control"
	"github.com/oblq/gauge/internal/gauge"
)

const (
	width  = 240
	height = 120
	scale  = 3
)

var (
	face     = text.NewGoXFace(basicfont.Face7x13)
	barColor = color.RGBA{R: 0x3c, G: 0xb3, B: 0x71, A: 0xff}
	bgColor  = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
)

// keys reports key-down edges through inpututil.
type keys struct {
	byName map[string]ebiten.Key
}

func newKeys(names []string) (*keys, error) {
	k := &keys{byName: make(map[string]ebiten.Key, len(names))}
	for _, name := range names {
		var key ebiten.Key
		if err := key.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("unknown key `%s`: %v", name, err)
		}
		k.byName[name] = key
	}
	return k, nil
}

func (k *keys) JustPressed(name string) bool {
	key, ok := k.byName[name]
	return ok && inpututil.IsKeyJustPressed(key)
}

type game struct {
	ctx  context.Context
	ctl  *control.Controller
	keys control.Keys
	opts control.RunOptions
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	g.ctl.Update(g.keys, g.opts.FrameDuration())
	if g.opts.OnFrame != nil {
		g.opts.OnFrame(g.ctl)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	drawGauge(screen, 16, "sensor", g.ctl.SensorText(), g.ctl.Level(gauge.Sensor))
	drawGauge(screen, 64, "command", g.ctl.CommandText(), g.ctl.Level(gauge.Command))
}

func drawGauge(screen *ebiten.Image, y float32, label, value string, level float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(16, float64(y))
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, fmt.Sprintf("%-8s %s%%", label, value), face, op)

	barW := float32(width - 32)
	vector.DrawFilledRect(screen, 16, y+18, barW, 12, bgColor, false)

	// the bar is only a drawing, the value above is never clamped
	fill := float32(level)
	if fill < 0 {
		fill = 0
	}
	if fill > 1 {
		fill = 1
	}
	vector.DrawFilledRect(screen, 16, y+18, barW*fill, 12, barColor, false)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return width, height
}

// Run opens the window and runs one controller frame per tick.
// It blocks until the window closes or ctx is done.
func Run(ctx context.Context, ctl *control.Controller, opts control.RunOptions) error {
	opts.Defaults()

	k, err := newKeys(opts.Keys)
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetTPS(opts.TPS)

	err = ebiten.RunGame(&game{ctx: ctx, ctl: ctl, keys: k, opts: opts})
	if err == ebiten.Termination {
		return nil
	}
	return err
}
