package welcome

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderProducesCard(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	avatar := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			avatar.Set(x, y, color.RGBA{R: 0xFF, A: 0xFF})
		}
	}

	data, err := r.Render(avatar, "Mon Serveur")
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	require.Equal(t, cardWidth, bounds.Dx())
	require.Equal(t, cardHeight, bounds.Dy())

	// The avatar center is inside the circle mask and keeps its color.
	red, _, _, _ := decoded.At(avatarX+avatarSize/2, avatarY+avatarSize/2).RGBA()
	require.Equal(t, uint32(0xFFFF), red)

	// The corner of the avatar square is outside the circle, so the
	// background shows through.
	cr, cg, cb, _ := decoded.At(avatarX+2, avatarY+2).RGBA()
	require.Equal(t, []uint32{0x2B2B, 0x2D2D, 0x3131}, []uint32{cr, cg, cb})
}
