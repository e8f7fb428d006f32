// Package pdf implements the document stamping engine: compositing a raster
// signature image onto a page of a PDF and appending the audit certificate
// page. All page coordinates are PDF user space, bottom-up; callers holding
// top-down screen coordinates convert first via ToDocumentSpace.
package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image/png"
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

var (
	ErrCorruptInput   = errors.New("input does not parse as a PDF")
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrInvalidImage   = errors.New("signature image is not a valid PNG")
)

type Engine struct {
	conf   *model.Configuration
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{
		conf:   conf,
		logger: logger.With(zap.String("component", "stamping_engine")),
	}
}

func (e *Engine) readContext(doc []byte) (*model.Context, error) {
	ctx, err := pdfapi.ReadContext(bytes.NewReader(doc), e.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	if err := pdfapi.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	return ctx, nil
}

// PageCount returns the number of pages in doc.
func (e *Engine) PageCount(doc []byte) (int, error) {
	ctx, err := e.readContext(doc)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageHeight returns the height in PDF user space units of the zero-based
// page, for converting screen coordinates at the request boundary.
func (e *Engine) PageHeight(doc []byte, page int) (float64, error) {
	ctx, err := e.readContext(doc)
	if err != nil {
		return 0, err
	}
	if page < 0 || page >= ctx.PageCount {
		return 0, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, ctx.PageCount)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	return dims[page].Height, nil
}

// Stamp composites the PNG signature image onto the zero-based page of doc,
// anchored at (x, y) in bottom-up user space and scaled to fit the given
// width and height. It returns fresh bytes; doc is never modified.
func (e *Engine) Stamp(doc, image []byte, page int, x, y, width, height float64) ([]byte, error) {
	ctx, err := e.readContext(doc)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= ctx.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, ctx.PageCount)
	}

	imgConf, err := png.DecodeConfig(bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// pdfcpu renders an image at one point per pixel at absolute scale 1, so
	// fit the pixel dimensions into the requested box.
	scale := width / float64(imgConf.Width)
	if h := height / float64(imgConf.Height); h < scale {
		scale = h
	}

	desc := fmt.Sprintf("pos:bl, scale:%.4f abs, rot:0, op:1", scale)
	wm, err := pdfapi.ImageWatermarkForReader(bytes.NewReader(image), desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	wm.Dx = x
	wm.Dy = y

	var out bytes.Buffer
	pages := []string{strconv.Itoa(page + 1)}
	if err := pdfapi.AddWatermarks(bytes.NewReader(doc), &out, pages, wm, e.conf); err != nil {
		return nil, fmt.Errorf("stamp page %d: %w", page, err)
	}

	e.logger.Debug("stamped signature image",
		zap.Int("page", page),
		zap.Float64("x", x),
		zap.Float64("y", y),
		zap.Int("result_bytes", out.Len()))

	return out.Bytes(), nil
}

// Fingerprint returns the hex sha256 digest over the concatenation of the
// pre-stamp document bytes and the signature image bytes. Display and audit
// use only; it is not an integrity proof for re-opened files.
func Fingerprint(doc, image []byte) string {
	h := sha256.New()
	h.Write(doc)
	h.Write(image)
	return hex.EncodeToString(h.Sum(nil))
}
