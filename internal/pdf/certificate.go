package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// AuditField is one label/value row on the audit certificate page.
type AuditField struct {
	Label string
	Value string
}

const certificateTitle = "Signing Certificate"

// AppendAuditPage appends one page to doc carrying a title band and the
// given label/value rows. Purely additive: the existing pages are untouched.
func (e *Engine) AppendAuditPage(doc []byte, fields []AuditField) ([]byte, error) {
	ctx, err := e.readContext(doc)
	if err != nil {
		return nil, err
	}
	last := ctx.PageCount

	var withPage bytes.Buffer
	if err := pdfapi.InsertPages(bytes.NewReader(doc), &withPage, []string{strconv.Itoa(last)}, false, nil, e.conf); err != nil {
		return nil, fmt.Errorf("append audit page: %w", err)
	}
	certPage := []string{strconv.Itoa(last + 1)}

	title, err := pdfapi.TextWatermark(certificateTitle,
		"font:Helvetica, points:20, pos:tc, off:0 -64, scale:1 abs, rot:0, fillc:#1a1a1a",
		true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("render certificate title: %w", err)
	}

	var titled bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(withPage.Bytes()), &titled, certPage, title, e.conf); err != nil {
		return nil, fmt.Errorf("render certificate title: %w", err)
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s:  %s", f.Label, f.Value))
	}

	body, err := pdfapi.TextWatermark(strings.Join(lines, "\n"),
		"font:Helvetica, points:11, pos:tl, off:56 -130, scale:1 abs, rot:0, fillc:#333333",
		true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("render certificate body: %w", err)
	}

	var out bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(titled.Bytes()), &out, certPage, body, e.conf); err != nil {
		return nil, fmt.Errorf("render certificate body: %w", err)
	}

	e.logger.Debug("appended audit certificate page",
		zap.Int("rows", len(fields)),
		zap.Int("page", last+1))

	return out.Bytes(), nil
}
