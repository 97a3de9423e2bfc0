package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/physarum/frame"
	"github.com/pthm-cable/physarum/sim"
)

// FieldRenderer draws the trail and food grids as one texture, one texel
// per cell, scaled to the camera's field rectangle.
type FieldRenderer struct {
	composer *frame.Composer
	pixels   []color.RGBA

	fieldTex   rl.Texture2D
	texW, texH int

	initialized bool
}

// NewFieldRenderer creates a new field renderer.
func NewFieldRenderer(palette frame.Palette) *FieldRenderer {
	return &FieldRenderer{composer: frame.NewComposer(palette)}
}

// Init creates the texture (must be called after raylib window is created).
func (r *FieldRenderer) Init(fieldW, fieldH int) {
	if r.initialized {
		return
	}

	r.texW = fieldW
	r.texH = fieldH

	img := rl.GenImageColor(fieldW, fieldH, rl.Black)
	r.fieldTex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.fieldTex, rl.FilterPoint)
	rl.SetTextureWrap(r.fieldTex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// SetGain changes the trail tone-mapping gain.
func (r *FieldRenderer) SetGain(gain float32) { r.composer.Gain = gain }

// Gain returns the trail tone-mapping gain.
func (r *FieldRenderer) Gain() float32 { return r.composer.Gain }

// SetShowFood toggles the food layer.
func (r *FieldRenderer) SetShowFood(show bool) { r.composer.HideFood = !show }

// Update composes the snapshot and uploads it to the GPU texture.
func (r *FieldRenderer) Update(snap *sim.Snapshot) {
	if !r.initialized {
		r.Init(snap.Width, snap.Height)
	}
	if snap.Width != r.texW || snap.Height != r.texH {
		return
	}

	r.pixels = r.composer.Compose(r.pixels, snap)
	rl.UpdateTexture(r.fieldTex, r.pixels)
}

// Draw renders the field into the screen rectangle (x, y, w, h).
func (r *FieldRenderer) Draw(x, y, w, h float32) {
	if !r.initialized {
		return
	}

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	rl.DrawTexturePro(r.fieldTex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.fieldTex)
	r.initialized = false
}
