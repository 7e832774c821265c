package export

import (
	"image/png"
	"os"

	"github.com/san-kum/chaoscope/internal/colormap"
	"github.com/san-kum/chaoscope/internal/diverge"
)

// WritePNG shades the field's display channel and encodes it. Row
// order flips inside the shader, so the image comes out with v up.
func WritePNG(path string, f *diverge.Field, shader colormap.Shader) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, shader.Image(f))
}
