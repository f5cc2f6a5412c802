package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
)

// ErrNotRadiance is returned for streams without a Radiance header.
var ErrNotRadiance = errors.New("not a Radiance HDR image")

// Panorama is a decoded equirectangular HDR image. Pix holds linear RGB
// triples, row-major.
type Panorama struct {
	Width  int
	Height int
	Pix    []float32
}

// At returns the RGB triple at (x, y).
func (p *Panorama) At(x, y int) [3]float32 {
	i := (y*p.Width + x) * 3
	return [3]float32{p.Pix[i], p.Pix[i+1], p.Pix[i+2]}
}

// LoadHDR reads a Radiance .hdr file. With flip set the bottom image row is
// stored first, which is the orientation GL expects for texture uploads.
func LoadHDR(path string, flip bool) (*Panorama, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hdr %q: %w", path, err)
	}
	defer f.Close()

	pano, err := DecodeHDR(f, flip)
	if err != nil {
		return nil, fmt.Errorf("decode hdr %q: %w", path, err)
	}
	return pano, nil
}

// DecodeHDR decodes a Radiance RGBE stream with the rgbe codec. Only the
// standard "-Y h +X w" layout in 32-bit_rle_rgbe format is accepted.
func DecodeHDR(r io.Reader, flip bool) (*Panorama, error) {
	br := bufio.NewReaderSize(r, headerPeek)
	// the header stays buffered for the codec
	head, _ := br.Peek(headerPeek)
	if err := checkHDRHeader(head); err != nil {
		return nil, err
	}

	img, err := rgbe.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("rgbe: %w", err)
	}
	src, ok := img.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("rgbe: unexpected image type %T", img)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pano := &Panorama{Width: w, Height: h, Pix: make([]float32, w*h*3)}
	for row := 0; row < h; row++ {
		y := row
		if flip {
			y = h - 1 - row
		}
		dst := pano.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			cr, cg, cb, _ := src.HDRAt(b.Min.X+x, b.Min.Y+row).HDRRGBA()
			dst[x*3], dst[x*3+1], dst[x*3+2] = float32(cr), float32(cg), float32(cb)
		}
	}
	return pano, nil
}

const headerPeek = 4096

// checkHDRHeader validates the magic line, the FORMAT variable and the
// resolution string in the buffered start of the stream.
func checkHDRHeader(head []byte) error {
	lines := strings.Split(string(head), "\n")
	if len(lines) < 2 {
		return ErrNotRadiance
	}
	magic := strings.TrimSpace(lines[0])
	if magic != "#?RADIANCE" && magic != "#?RGBE" {
		return ErrNotRadiance
	}

	i := 1
	for ; i < len(lines)-1; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != "32-bit_rle_rgbe" {
			return fmt.Errorf("unsupported format %q", v)
		}
	}
	if i+2 >= len(lines) {
		return errors.New("header: missing resolution string")
	}

	res := strings.TrimSpace(lines[i+1])
	fields := strings.Fields(res)
	if len(fields) != 4 || fields[0] != "-Y" || fields[2] != "+X" {
		return fmt.Errorf("unsupported resolution string %q", res)
	}
	h, err1 := strconv.Atoi(fields[1])
	w, err2 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return fmt.Errorf("bad dimensions %q", res)
	}
	return nil
}
