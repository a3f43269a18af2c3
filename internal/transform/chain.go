package transform

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Chain applies the fixed ordered sequence of image operations to one item:
// resize → blur → sharpen → contrast → brightness, optionally followed by a
// watermark. Step order never changes; only the parameters in ChainConfig do.
type Chain struct {
	cfg ChainConfig
}

// NewChain creates a Chain with the given per-run configuration.
func NewChain(cfg ChainConfig) *Chain {
	return &Chain{cfg: cfg}
}

// Apply decodes the source image once, runs every step in order, and encodes
// the result to dstPath. Formats that cannot carry alpha (JPEG, BMP) get the
// image flattened onto an opaque white background once, immediately before
// encoding.
func (c *Chain) Apply(srcPath, dstPath string) error {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	out, err := c.run(img)
	if err != nil {
		return err
	}

	format, err := imaging.FormatFromFilename(dstPath)
	if err != nil {
		return fmt.Errorf("unsupported destination format: %w", err)
	}
	if format == imaging.JPEG || format == imaging.BMP {
		out = flatten(out)
	}

	if err := imaging.Save(out, dstPath, imaging.JPEGQuality(c.cfg.JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return nil
}

func (c *Chain) run(img image.Image) (*image.NRGBA, error) {
	out := c.applyResize(img)
	out = c.applyBlur(out)
	out = c.applySharpen(out)
	out = c.applyContrast(out)
	out = c.applyBrightness(out)

	if c.cfg.WatermarkText != "" {
		return c.applyWatermark(out)
	}

	return out, nil
}

// applyResize scales the image to the configured target dimensions. The
// stress profile first bounces the image through its intermediate sizes.
func (c *Chain) applyResize(img image.Image) *image.NRGBA {
	for i := 0; i < c.iterations(); i++ {
		for _, s := range c.cfg.StressSizes {
			img = imaging.Resize(img, s.Width, s.Height, c.cfg.ResizeFilter)
		}
	}

	return imaging.Resize(img, c.cfg.Width, c.cfg.Height, c.cfg.ResizeFilter)
}

// applyBlur applies the Gaussian blur, ramping the sigma up across
// iterations so repeated passes stay bounded.
func (c *Chain) applyBlur(img *image.NRGBA) *image.NRGBA {
	n := c.iterations()
	for i := 0; i < n; i++ {
		sigma := c.cfg.BlurSigma * float64(i+1) / float64(n)
		img = imaging.Blur(img, sigma)
	}

	return img
}

func (c *Chain) applySharpen(img *image.NRGBA) *image.NRGBA {
	for i := 0; i < c.iterations(); i++ {
		img = imaging.Sharpen(img, c.cfg.SharpenSigma)
	}

	return img
}

func (c *Chain) applyContrast(img *image.NRGBA) *image.NRGBA {
	for i := 0; i < c.iterations(); i++ {
		img = imaging.AdjustContrast(img, c.cfg.ContrastPct)
	}

	return img
}

func (c *Chain) applyBrightness(img *image.NRGBA) *image.NRGBA {
	for i := 0; i < c.iterations(); i++ {
		img = imaging.AdjustBrightness(img, c.cfg.BrightnessPct)
	}

	return img
}

// applyWatermark draws the configured text in the bottom-right corner. A
// configured TTF file sets the face; without one the built-in bitmap face
// is used so the step needs no font asset.
func (c *Chain) applyWatermark(img *image.NRGBA) (*image.NRGBA, error) {
	dc := gg.NewContextForImage(img)
	dc.SetColor(color.White)

	if c.cfg.WatermarkFontPath != "" {
		fontSize := float64(dc.Width()) * 0.05 // 5% of the image width
		if err := dc.LoadFontFace(c.cfg.WatermarkFontPath, fontSize); err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
	} else {
		dc.SetFontFace(basicfont.Face7x13)
	}

	tw, th := dc.MeasureString(c.cfg.WatermarkText)

	margin := 10.0
	x := float64(dc.Width()) - tw - margin
	y := float64(dc.Height()) - th - margin

	dc.DrawStringAnchored(c.cfg.WatermarkText, x, y, 1, 1) // bottom-right corner
	dc.Fill()

	return imaging.Clone(dc.Image()), nil
}

func (c *Chain) iterations() int {
	if c.cfg.Iterations < 1 {
		return 1
	}

	return c.cfg.Iterations
}

// flatten composites the image over an opaque white background for encode
// targets that cannot represent alpha.
func flatten(img *image.NRGBA) *image.NRGBA {
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)

	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
