package gridmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrMalformedImage reports a map image that is not an 8-bit binary PGM of
// the dimensions implied by its header.
var ErrMalformedImage = errors.New("malformed map image")

// maxPGMCells caps the cell count a PGM header may declare. The raster
// buffer is allocated from the header alone, so oversized or overflowing
// dimension products must be rejected first. 64 Mi cells is an 8192x8192
// map, far beyond any grid this package serves.
const maxPGMCells = 64 << 20

// MapMeta is the map_server metadata sidecar written next to a map image.
type MapMeta struct {
	Image          string    `yaml:"image"`
	Resolution     float64   `yaml:"resolution"`
	Origin         []float64 `yaml:"origin"`
	Negate         int       `yaml:"negate"`
	OccupiedThresh float64   `yaml:"occupied_thresh"`
	FreeThresh     float64   `yaml:"free_thresh"`
}

// ReadOccupancyGrid loads a map previously exported with WriteOccupancyGrid.
// base is the artifact path without extension; the image path comes from the
// sidecar's image field, resolved relative to the sidecar's directory unless
// it is already absolute.
//
// Cell intensities invert back to probabilities and then to log-odds, so a
// written-and-reloaded map matches the original only up to the 8-bit
// quantization of the image format.
func ReadOccupancyGrid(base string) (*GridMap, error) {
	raw, err := os.ReadFile(base + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read map metadata: %w", err)
	}

	var meta MapMeta
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse map metadata: %w", err)
	}
	if meta.Resolution <= 0 {
		return nil, fmt.Errorf("map metadata: resolution %g must be positive", meta.Resolution)
	}
	if len(meta.Origin) < 2 {
		return nil, fmt.Errorf("map metadata: origin needs at least [x, y], got %d values", len(meta.Origin))
	}
	if meta.Image == "" {
		return nil, fmt.Errorf("map metadata: missing image field")
	}

	imagePath := meta.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(base), imagePath)
	}
	image, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open map image: %w", err)
	}
	defer image.Close()

	r := bufio.NewReader(image)
	rows, cols, err := readPGMHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagePath, err)
	}

	raster := make([]byte, rows*cols)
	if _, err := io.ReadFull(r, raster); err != nil {
		return nil, fmt.Errorf("%s: raster truncated: %w", imagePath, ErrMalformedImage)
	}

	m := New(rows, cols, meta.Resolution, WorldPoint{X: meta.Origin[0], Y: meta.Origin[1]})
	data := m.cells.RawMatrix().Data
	for i, b := range raster {
		p := float64(255-b) / 255.0
		if meta.Negate != 0 {
			p = float64(b) / 255.0
		}
		data[i] = clampLogOdds(ProbabilityToLogOdds(p))
	}
	return m, nil
}

// readPGMHeader consumes the P5 header tokens and the single whitespace byte
// that separates them from the raster, leaving r positioned at the first
// intensity byte.
func readPGMHeader(r *bufio.Reader) (rows, cols int, err error) {
	magic, err := nextPGMToken(r)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	if magic != "P5" {
		return 0, 0, fmt.Errorf("%w: magic %q, want P5", ErrMalformedImage, magic)
	}

	fields := [3]int{}
	for i := range fields {
		tok, err := nextPGMToken(r)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: header truncated: %v", ErrMalformedImage, err)
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: header field %q", ErrMalformedImage, tok)
		}
		fields[i] = n
	}

	cols, rows, maxval := fields[0], fields[1], fields[2]
	if cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("%w: dimensions %dx%d", ErrMalformedImage, cols, rows)
	}
	// Compare via division: the product itself could overflow int.
	if rows > maxPGMCells/cols {
		return 0, 0, fmt.Errorf("%w: dimensions %dx%d exceed %d cells", ErrMalformedImage, cols, rows, maxPGMCells)
	}
	if maxval != 255 {
		return 0, 0, fmt.Errorf("%w: maxval %d, want 255", ErrMalformedImage, maxval)
	}
	return rows, cols, nil
}

// nextPGMToken returns the next whitespace-delimited header token, skipping
// '#' comments through end of line. It consumes exactly one whitespace byte
// after the token, which after the maxval token is the raster delimiter.
func nextPGMToken(r *bufio.Reader) (string, error) {
	var tok []byte
	inComment := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		if inComment {
			if b == '\n' {
				inComment = false
			}
			continue
		}
		switch b {
		case '#':
			if len(tok) > 0 {
				// Comment byte terminates the token like whitespace would.
				if err := r.UnreadByte(); err != nil {
					return "", err
				}
				return string(tok), nil
			}
			inComment = true
		case ' ', '\t', '\n', '\r', '\v', '\f':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}
