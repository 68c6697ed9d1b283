package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Format is the image encoding used for extracted frames.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return "." + string(f)
}

func (f Format) imaging() imaging.Format {
	switch f {
	case JPEG:
		return imaging.JPEG
	case GIF:
		return imaging.GIF
	case BMP:
		return imaging.BMP
	case TIFF:
		return imaging.TIFF
	default:
		return imaging.PNG
	}
}

// Naming selects how frame files are named.
type Naming string

const (
	ByIndex     Naming = "index"
	ByTimestamp Naming = "timestamp"
)

func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByIndex:
		return ByIndex, nil
	case ByTimestamp:
		return ByTimestamp, nil
	default:
		return "", fmt.Errorf("unsupported naming %q", s)
	}
}

// FileName returns the frame file name. Names depend only on the inputs, so
// re-running a job reproduces them exactly.
func (n Naming) FileName(index int, ts time.Duration, f Format) string {
	if n == ByTimestamp {
		return fmt.Sprintf("frame_%010dms%s", ts.Milliseconds(), f.Ext())
	}
	return fmt.Sprintf("frame_%05d%s", index, f.Ext())
}
