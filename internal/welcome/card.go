// Package welcome renders the greeting card posted when a member joins:
// the member's avatar in a circle next to a welcome text and the guild
// name.
package welcome

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	cardWidth  = 700
	cardHeight = 250
	avatarSize = 200
	avatarX    = 25
	avatarY    = 25
)

var background = color.RGBA{R: 0x2B, G: 0x2D, B: 0x31, A: 0xFF}

type Renderer struct {
	titleFace    font.Face
	subtitleFace font.Face
	nameFace     font.Face
}

func NewRenderer() (*Renderer, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	faces := make([]font.Face, 0, 3)
	for _, size := range []float64{64, 28, 44} {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("build font face: %w", err)
		}
		faces = append(faces, face)
	}
	return &Renderer{titleFace: faces[0], subtitleFace: faces[1], nameFace: faces[2]}, nil
}

// Render produces the PNG card for a joining member.
func (r *Renderer) Render(avatar image.Image, guildName string) ([]byte, error) {
	card := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(card, card.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	r.drawAvatar(card, avatar)
	r.drawText(card, r.titleFace, "Bienvenue", 250, 100)
	r.drawText(card, r.subtitleFace, "sur le serveur Discord", 250, 140)
	r.drawText(card, r.nameFace, guildName, 250, 200)

	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawAvatar(card *image.RGBA, avatar image.Image) {
	target := image.Rect(avatarX, avatarY, avatarX+avatarSize, avatarY+avatarSize)

	scaled := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), avatar, avatar.Bounds(), xdraw.Src, nil)

	mask := &circleMask{
		center: image.Pt(avatarSize/2, avatarSize/2),
		radius: avatarSize / 2,
	}
	draw.DrawMask(card, target, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func (r *Renderer) drawText(card *image.RGBA, face font.Face, text string, x, y int) {
	drawer := &font.Drawer{
		Dst:  card,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// circleMask is an alpha mask that keeps only the pixels inside a circle.
type circleMask struct {
	center image.Point
	radius int
}

func (c *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (c *circleMask) Bounds() image.Rectangle {
	return image.Rect(c.center.X-c.radius, c.center.Y-c.radius, c.center.X+c.radius, c.center.Y+c.radius)
}

func (c *circleMask) At(x, y int) color.Color {
	dx := float64(x - c.center.X)
	dy := float64(y - c.center.Y)
	if dx*dx+dy*dy <= float64(c.radius*c.radius) {
		return color.Alpha{A: 0xFF}
	}
	return color.Alpha{}
}
