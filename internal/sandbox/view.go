package sandbox

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

// Surface answers floor queries for the view. navmesh.Mesh implements it.
type Surface interface {
	Surface(zone string, p mgl64.Vec3) (height float64, walkable, ok bool)
}

var (
	styleVoid    = tcell.StyleDefault
	styleFloor   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(90, 90, 90))
	styleBlocked = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleAvatar  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFlying  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 200, 255)).Bold(true)
	styleMarker  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleTaken   = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

const helpLine = "wasd move  space jump  f fly  q/e snap  g/G waypoint  t teleport  i immersive  x nav  esc quit"

// View draws a top-down map centred on the rig. Screen rows map to Z and
// columns to X; up on screen is -Z.
type View struct {
	screen  tcell.Screen
	surface Surface
	zone    string
	cellX   float64
	cellZ   float64
}

// NewView uses two columns per metre and one row per metre, which keeps
// terminal cells roughly square.
func NewView(screen tcell.Screen, surface Surface, zone string) *View {
	return &View{screen: screen, surface: surface, zone: zone, cellX: 0.5, cellZ: 1}
}

// Cell maps a world position to a screen cell.
func (v *View) Cell(center, p mgl64.Vec3) (int, int) {
	w, h := v.mapSize()
	col := int(math.Round((p.X()-center.X())/v.cellX)) + w/2
	row := int(math.Round((p.Z()-center.Z())/v.cellZ)) + h/2
	return col, row
}

// World maps a screen cell back to a floor position.
func (v *View) World(center mgl64.Vec3, col, row int) mgl64.Vec3 {
	w, h := v.mapSize()
	return mgl64.Vec3{
		center.X() + float64(col-w/2)*v.cellX,
		center.Y(),
		center.Z() + float64(row-h/2)*v.cellZ,
	}
}

func (v *View) mapSize() (int, int) {
	w, h := v.screen.Size()
	return w, max(h-2, 1)
}

// Draw renders one frame and shows it.
func (v *View) Draw(frame locomotion.Frame, mode locomotion.Mode, pending int, markers []Marker, flags []string) {
	v.screen.Clear()
	center := frame.Rig.Position
	w, h := v.mapSize()

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			p := v.World(center, col, row)
			_, walkable, ok := v.surface.Surface(v.zone, p)
			switch {
			case !ok:
				v.screen.SetContent(col, row, ' ', nil, styleVoid)
			case walkable:
				v.screen.SetContent(col, row, '.', nil, styleFloor)
			default:
				v.screen.SetContent(col, row, '#', nil, styleBlocked)
			}
		}
	}

	for _, m := range markers {
		col, row := v.Cell(center, m.Position)
		if col < 0 || row < 0 || col >= w || row >= h {
			continue
		}
		r, style := 'o', styleMarker
		if m.Instant {
			r = '*'
		}
		if m.Occupied {
			style = styleTaken
		}
		v.screen.SetContent(col, row, r, nil, style)
	}

	style := styleAvatar
	if mode.Flying() {
		style = styleFlying
	}
	col, row := v.Cell(center, center)
	v.screen.SetContent(col, row, headingGlyph(spatial.Yaw(frame.Viewpoint)), nil, style)

	v.text(0, h, helpLine, styleFloor)
	v.text(0, h+1, status(frame, mode, pending, flags), styleStatus)
	v.screen.Show()
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	w, _ := v.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func status(frame locomotion.Frame, mode locomotion.Mode, pending int, flags []string) string {
	p := frame.Viewpoint.Position
	s := fmt.Sprintf(" #%d %s jump:%s pending:%d pos:(%.2f, %.2f, %.2f)",
		frame.Seq, mode, frame.Jump, pending, p.X(), p.Y(), p.Z())
	if frame.Traveling {
		s += " traveling"
	}
	if len(flags) > 0 {
		s += " [" + strings.Join(flags, ",") + "]"
	}
	return s
}

// headingGlyph picks the arrow closest to the yaw. Yaw 0 faces -Z, which is up.
func headingGlyph(yaw float64) rune {
	quarter := int(math.Round(yaw/(math.Pi/2))) % 4
	if quarter < 0 {
		quarter += 4
	}
	return [4]rune{'^', '<', 'v', '>'}[quarter]
}
