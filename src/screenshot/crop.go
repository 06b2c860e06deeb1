package screenshot

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"game-translator/src/region"
)

const tempSubdir = "game-translator"

func defaultTempDir() string { return filepath.Join(os.TempDir(), tempSubdir) }

// Crop is one region cut from a frame and written to a PNG file.
// Skipped crops lie entirely outside the frame and have no file.
type Crop struct {
	Index   int
	Region  region.Region
	Path    string
	Skipped bool
}

// CropSet owns the temp files of one capture. Release removes them and is
// safe to call more than once. Bounds is where Frame sits on screen.
type CropSet struct {
	Frame  *image.NRGBA
	Bounds image.Rectangle
	Crops  []Crop
}

func (c *CropSet) Release() {
	if c == nil {
		return
	}
	for i := range c.Crops {
		if c.Crops[i].Path == "" {
			continue
		}
		if err := os.Remove(c.Crops[i].Path); err != nil && !os.IsNotExist(err) {
			log.Printf("screenshot: failed to remove %s: %v", c.Crops[i].Path, err)
		}
		c.Crops[i].Path = ""
	}
}

// Paths returns the file of each non-skipped crop, in order.
func (c *CropSet) Paths() []string {
	var out []string
	for _, cr := range c.Crops {
		if !cr.Skipped {
			out = append(out, cr.Path)
		}
	}
	return out
}

// CropImage cuts img into one crop per region, clamped to the image bounds.
// On error every file written so far is removed.
func (s *Service) CropImage(img image.Image, regions []region.Region) (*CropSet, error) {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, &CaptureError{Op: "temp dir", Err: err}
	}
	bounds := img.Bounds()
	set := &CropSet{Frame: imaging.Clone(img), Bounds: bounds, Crops: make([]Crop, 0, len(regions))}
	for i, r := range regions {
		rect := r.Normalize().Rect().Add(bounds.Min).Intersect(bounds)
		crop := Crop{Index: i, Region: r}
		if rect.Empty() {
			log.Printf("screenshot: region %d %v outside frame %v, skipping", i, r, bounds)
			crop.Skipped = true
			set.Crops = append(set.Crops, crop)
			continue
		}
		path, err := s.writeTemp(imaging.Crop(img, rect))
		if err != nil {
			set.Release()
			return nil, &CaptureError{Op: fmt.Sprintf("crop %d", i), Err: err}
		}
		crop.Path = path
		set.Crops = append(set.Crops, crop)
	}
	return set, nil
}

// FrameFile writes the whole image as a single crop covering the frame.
func (s *Service) FrameFile(img image.Image) (*CropSet, error) {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, &CaptureError{Op: "temp dir", Err: err}
	}
	b := img.Bounds()
	path, err := s.writeTemp(img)
	if err != nil {
		return nil, &CaptureError{Op: "frame", Err: err}
	}
	return &CropSet{
		Frame:  imaging.Clone(img),
		Bounds: b,
		Crops:  []Crop{{Index: 0, Region: region.New(0, 0, b.Dx(), b.Dy()), Path: path}},
	}, nil
}

func (s *Service) writeTemp(img image.Image) (string, error) {
	path := filepath.Join(s.tempDir, uuid.NewString()+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", err
	}
	return path, nil
}
