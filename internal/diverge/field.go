package diverge

// Field is a res-by-res grid of four-float32 pixel records, row 0 at
// the bottom. Simulation math runs in float64; fields are the texture
// form results are stored and colored in.
type Field struct {
	Res int
	Pix []float32
}

func NewField(res int) *Field {
	return &Field{Res: res, Pix: make([]float32, res*res*4)}
}

func (f *Field) idx(px, py int) int {
	return 4 * (py*f.Res + px)
}

func (f *Field) At(px, py int) [4]float32 {
	i := f.idx(px, py)
	return [4]float32{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

func (f *Field) Set(px, py int, rec [4]float32) {
	i := f.idx(px, py)
	f.Pix[i] = rec[0]
	f.Pix[i+1] = rec[1]
	f.Pix[i+2] = rec[2]
	f.Pix[i+3] = rec[3]
}

// Value returns channel ch of pixel (px, py); ch 0 is the display
// value for every view mode.
func (f *Field) Value(px, py, ch int) float32 {
	return f.Pix[f.idx(px, py)+ch]
}

func (f *Field) Clone() *Field {
	c := &Field{Res: f.Res, Pix: make([]float32, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}
