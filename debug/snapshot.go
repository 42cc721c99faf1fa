package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/willemolding/rgy/video"
)

// SaveFramePNG writes frame as an RGBA PNG into directory, named baseName
// plus a timestamp. An empty directory uses the process's working directory.
func SaveFramePNG(frame *video.FrameBuffer, baseName, directory string) error {
	pixels := frame.ToSlice()

	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for i, px := range pixels {
		r := byte(px >> 24)
		g := byte(px >> 16)
		b := byte(px >> 8)
		a := byte(px)
		idx := i * 4
		img.Pix[idx] = r
		img.Pix[idx+1] = g
		img.Pix[idx+2] = b
		img.Pix[idx+3] = a
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("debug: get working directory: %w", err)
		}
		outputDir = cwd
	}

	filename := fmt.Sprintf("%s_%s.png", baseName, time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("debug: create snapshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("debug: encode snapshot PNG: %w", err)
	}

	slog.Info("snapshot saved", "path", path)
	return nil
}
