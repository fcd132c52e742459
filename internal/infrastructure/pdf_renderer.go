package infrastructure

import (
	"context"
	"fmt"
	"time"

	"insightgo/pkg/logger"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	pdfHeaderTemplate = `<div style="font-size:9px; width:100%; text-align:center; color:#666;">Insight Report</div>`
	pdfFooterTemplate = `<div style="font-size:9px; width:100%; text-align:center; color:#666;">Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
)

// ChromePDFRenderer implements PDFRenderer by printing the report HTML
// through a headless Chrome instance. A fresh browser context is used
// per render so a crashed tab never poisons later runs.
type ChromePDFRenderer struct {
	timeout time.Duration
	logger  *logger.Logger
}

func NewChromePDFRenderer(timeout time.Duration, logger *logger.Logger) *ChromePDFRenderer {
	return &ChromePDFRenderer{timeout: timeout, logger: logger}
}

// Render converts the HTML document to an A4 PDF with page numbers.
func (r *ChromePDFRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 with 20mm vertical and 15mm horizontal margins,
			// expressed in inches for the print API.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.79).
				WithMarginBottom(0.79).
				WithMarginLeft(0.59).
				WithMarginRight(0.59).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(pdfHeaderTemplate).
				WithFooterTemplate(pdfFooterTemplate).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	r.logger.WithFields(map[string]any{
		"duration": time.Since(start),
		"size":     len(pdf),
	}).Info("PDF rendered")

	return pdf, nil
}
