package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"code.sajari.com/docconv"

	"github.com/medlens-ai/medlens/internal/core"
)

// Result is the outcome of a successful extraction. Metadata is whatever the
// parser reports and is passed through opaquely.
type Result struct {
	Text     string            `json:"text"`
	Pages    int               `json:"pages"`
	Metadata map[string]string `json:"metadata"`
}

// minContentLength is the shortest normalized text accepted. Anything below
// is treated as a scanned image without a text layer.
const minContentLength = 50

var pdfSignature = []byte("%PDF-")

var (
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n\s*\n+`)
)

// PDF extracts normalized plain text from a PDF byte buffer.
//
// Errors are classified per the pipeline taxonomy: a missing %PDF- signature
// or an unparsable file is INVALID_DOCUMENT; parsable but near-empty text is
// INSUFFICIENT_CONTENT.
func PDF(buf []byte) (*Result, error) {
	if len(buf) == 0 {
		return nil, core.E(core.KindInvalidDocument, "empty file buffer")
	}
	if !bytes.HasPrefix(buf, pdfSignature) {
		return nil, core.E(core.KindInvalidDocument, "file does not appear to be a valid PDF")
	}

	res, err := docconv.Convert(bytes.NewReader(buf), "application/pdf", false)
	if err != nil {
		return nil, core.Wrap(core.KindInvalidDocument, "PDF parsing failed", err)
	}

	text := normalize(res.Body)
	if len(text) < minContentLength {
		return nil, core.E(core.KindInsufficientContent,
			"PDF appears to be empty or contains insufficient text; it may be a scanned image without a text layer")
	}

	return &Result{
		Text:     text,
		Pages:    pageCount(res.Meta),
		Metadata: res.Meta,
	}, nil
}

// normalize collapses whitespace runs and blank-line runs, then trims.
func normalize(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankLineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// pageCount reads the page count the parser reports, when it does.
func pageCount(meta map[string]string) int {
	for _, key := range []string{"Pages", "pages", "PageCount"} {
		if v, ok := meta[key]; ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}
