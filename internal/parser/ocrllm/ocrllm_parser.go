// Package ocrllm implements the OCR-then-text parser variant: plain text is
// extracted from the image first, then handed to the text model with the same
// constrained prompt every variant shares.
package ocrllm

import (
	"context"
	"fmt"

	"smartledger/internal/port"
)

// Parser composes a TextExtractor with a text-capable BillParser.
type Parser struct {
	extractor  port.TextExtractor
	textParser port.BillParser
}

// NewParser creates the composed OCR-then-text parser.
func NewParser(extractor port.TextExtractor, textParser port.BillParser) *Parser {
	return &Parser{extractor: extractor, textParser: textParser}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseResult, error) {
	text, err := p.extractor.ExtractText(ctx, input.ImageBytes)
	if err != nil {
		return nil, fmt.Errorf("ocr extraction: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("ocr extraction returned no text")
	}
	return p.textParser.Parse(ctx, port.ParseInput{Text: text})
}
