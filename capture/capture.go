// Package capture writes soft device frames to disk: OpenEXR as 16-bit half
// floats, which keeps values above 1, and PNG as an 8-bit preview.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/clone"
	"github.com/gekko3d/postfx"
	"github.com/gekko3d/postfx/soft"
	"github.com/mrjoshuak/go-openexr/exr"
)

// ToEXR copies tex into an EXR image. Encoding stores HALF channels, so
// values round to about three decimal digits.
func ToEXR(tex *soft.Texture) *exr.RGBAImage {
	w, h := tex.Width(), tex.Height()
	img := exr.NewRGBAImage(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := tex.RGBA(x, y)
			img.SetRGBA(x, y, c[0], c[1], c[2], c[3])
		}
	}
	return img
}

// FromEXR copies an EXR image into a new untracked texture.
func FromEXR(img *exr.RGBAImage) *soft.Texture {
	b := img.Bounds()
	tex := soft.NewTexture(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.RGBA(b.Min.X+x, b.Min.Y+y)
			tex.SetRGBA(x, y, [4]float32{r, g, bl, a})
		}
	}
	return tex
}

func WriteEXR(path string, tex *soft.Texture) error {
	if err := exr.EncodeFile(path, ToEXR(tex)); err != nil {
		return fmt.Errorf("capture: writing %s: %w", path, err)
	}
	return nil
}

func ReadEXR(path string) (*soft.Texture, error) {
	img, err := exr.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: reading %s: %w", path, err)
	}
	return FromEXR(img), nil
}

// WritePNG writes an 8-bit preview; values outside [0,1] are clamped.
func WritePNG(path string, tex *soft.Texture) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, clone.AsRGBA(tex)); err != nil {
		return fmt.Errorf("capture: encoding %s: %w", path, err)
	}
	return f.Close()
}

// Sequence writes numbered frames into a directory.
type Sequence struct {
	Dir     string
	Prefix  string
	PNG     bool
	written int
	logger  postfx.Logger
}

func NewSequence(dir string, logger postfx.Logger) (*Sequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	if logger == nil {
		logger = postfx.NewNopLogger()
	}
	return &Sequence{Dir: dir, Prefix: "frame", logger: logger}, nil
}

// Write stores tex as the next frame and returns the EXR path.
func (s *Sequence) Write(tex *soft.Texture) (string, error) {
	base := filepath.Join(s.Dir, fmt.Sprintf("%s_%04d", s.Prefix, s.written))
	path := base + ".exr"
	if err := WriteEXR(path, tex); err != nil {
		return "", err
	}
	if s.PNG {
		if err := WritePNG(base+".png", tex); err != nil {
			return "", err
		}
	}
	s.written++
	s.logger.Debugf("capture: wrote %s", path)
	return path, nil
}

func (s *Sequence) Written() int { return s.written }
