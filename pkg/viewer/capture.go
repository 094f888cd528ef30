package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

func (v *Viewer) captureFrame(img *ebiten.Image, cursor int, timestamp time.Time) {
	if v.opts.CaptureDir == "" {
		return
	}

	if err := os.MkdirAll(v.opts.CaptureDir, 0o755); err != nil {
		v.log.WithError(err).Error("creating capture directory")
		return
	}

	filename := fmt.Sprintf("route-map-%s-%03d.png", timestamp.Format("20060102-150405"), cursor)
	path := filepath.Join(v.opts.CaptureDir, filename)

	// Copy the pixels out now; encoding happens off the game loop.
	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			v.log.WithError(err).WithField("path", path).Error("capturing frame")
			return
		}
		v.log.WithFields(logrus.Fields{"path": path}).Info("captured frame")
	}()
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
