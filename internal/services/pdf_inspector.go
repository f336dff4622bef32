package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrInvalidPDF = errors.New("invalid pdf")

var pdfMagic = []byte("%PDF-")

type PDFInfo struct {
	PageCount int
	SizeBytes int64
}

// PDFInspector checks that an upload is a readable PDF before anything is
// stored for it.
type PDFInspector struct {
	maxPages int
}

func NewPDFInspector(maxPages int) *PDFInspector {
	return &PDFInspector{maxPages: maxPages}
}

func (p *PDFInspector) Inspect(data []byte) (*PDFInfo, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrInvalidPDF)
	}

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidPDF)
	}
	if p.maxPages > 0 && pageCount > p.maxPages {
		return nil, fmt.Errorf("%w: %d pages exceeds limit of %d", ErrInvalidPDF, pageCount, p.maxPages)
	}

	return &PDFInfo{PageCount: pageCount, SizeBytes: int64(len(data))}, nil
}
