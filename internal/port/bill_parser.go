package port

import "context"

// ParseInput carries the raw material for one parse attempt. Image variants
// read ImageBytes/ContentType; the text variant reads Text.
type ParseInput struct {
	ImageBytes  []byte
	ContentType string
	Text        string
}

// BillFields holds the candidate fields a backend guessed from the input.
// Values are loosely typed strings and may be missing or malformed; they are
// never persisted without passing through the validator first.
type BillFields struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	NWType      string `json:"nw_type"`
}

// ParseResult is the outcome of a backend call. When the model's output was
// not well-formed JSON, Raw preserves the verbatim text for diagnostics and
// Fields is left empty, which fails required-field validation downstream.
type ParseResult struct {
	Fields    BillFields
	Raw       string
	ModelUsed string
}

// BillParser abstracts the external model call that turns a receipt image or
// free-text description into candidate bill fields.
type BillParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseResult, error)
}

// TextExtractor abstracts OCR: plain text out of image bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}
