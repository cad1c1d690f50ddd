package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"smartledger/internal/config"
	"smartledger/internal/domain"
	"smartledger/internal/port"
	"smartledger/internal/validator"
)

// BillInput is the bill payload of a manual entry. Amount is loosely typed
// because callers may send it as a JSON string or number.
type BillInput struct {
	BillID      string      `json:"bill_id" binding:"required"`
	Category    string      `json:"category" binding:"required"`
	Amount      interface{} `json:"amount" binding:"required"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	NWType      string      `json:"nw_type"`
}

// ManualBillInput is the DTO for manual bill submission.
type ManualBillInput struct {
	UserID string    `json:"user_id" binding:"required"`
	Bill   BillInput `json:"bill" binding:"required"`
}

// IngestImageInput carries one receipt image ingest request. The caller has
// already been authenticated; UserID is taken from the verified token.
type IngestImageInput struct {
	UserID      string
	BillID      string
	Image       []byte
	ContentType string
	Variant     domain.ParseVariant
}

// IngestTextInput carries one free-text ingest request.
type IngestTextInput struct {
	UserID string
	BillID string
	Text   string
}

// IngestResult mirrors the normalized record back to the caller. Amount is a
// fixed two-decimal string.
type IngestResult struct {
	BillID      string `json:"bill_id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	NWType      string `json:"nw_type,omitempty"`
	Model       string `json:"model,omitempty"`
}

// BillService orchestrates bill ingestion: parser backend (for non-manual
// paths), validator, store. It keeps no state between calls; every operation
// re-reads current store state.
type BillService interface {
	CreateManual(ctx context.Context, input ManualBillInput) (*domain.Bill, error)
	IngestImage(ctx context.Context, input IngestImageInput) (*IngestResult, error)
	IngestText(ctx context.Context, input IngestTextInput) (*IngestResult, error)
	// Delete removes a bill after verifying the caller owns it.
	Delete(ctx context.Context, userID, billID string) error
	Get(ctx context.Context, billID string) (*domain.Bill, error)
	List(ctx context.Context, userID string) ([]domain.Bill, error)
}

type billService struct {
	billRepo port.BillRepository
	parsers  map[domain.ParseVariant]port.BillParser
	storage  port.ObjectStorage
	s3cfg    config.S3Config
}

// NewBillService creates a new BillService. storage may be nil; receipt
// archival is skipped when it is nil or the bucket is unset.
func NewBillService(
	billRepo port.BillRepository,
	parsers map[domain.ParseVariant]port.BillParser,
	storage port.ObjectStorage,
	s3cfg config.S3Config,
) BillService {
	return &billService{billRepo: billRepo, parsers: parsers, storage: storage, s3cfg: s3cfg}
}

func (s *billService) CreateManual(ctx context.Context, input ManualBillInput) (*domain.Bill, error) {
	bill, err := validator.Normalize(validator.Input{
		BillID:      input.Bill.BillID,
		UserID:      input.UserID,
		Category:    input.Bill.Category,
		Amount:      input.Bill.Amount,
		Date:        input.Bill.Date,
		Description: input.Bill.Description,
		NWType:      input.Bill.NWType,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	log.Printf("manual_bill saved bill_id=%s user_id=%s category=%s nw_type=%s amount=%s",
		bill.BillID, bill.UserID, bill.Category, bill.NWType, bill.AmountString())
	return bill, nil
}

func (s *billService) IngestImage(ctx context.Context, input IngestImageInput) (*IngestResult, error) {
	if len(input.Image) == 0 {
		return nil, domain.ErrEmptyInput
	}
	parser, ok := s.parsers[input.Variant]
	if !ok {
		return nil, fmt.Errorf("%w: no parser for variant %q", domain.ErrParserBackend, input.Variant)
	}

	result, err := parser.Parse(ctx, port.ParseInput{
		ImageBytes:  input.Image,
		ContentType: input.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParserBackend, err)
	}

	out, err := s.finishIngest(ctx, input.UserID, input.BillID, result)
	if err != nil {
		return nil, err
	}
	s.archiveReceipt(ctx, input.UserID, input.BillID, input.Image, input.ContentType)
	return out, nil
}

func (s *billService) IngestText(ctx context.Context, input IngestTextInput) (*IngestResult, error) {
	if input.Text == "" {
		return nil, domain.ErrEmptyInput
	}
	parser, ok := s.parsers[domain.VariantLLM]
	if !ok {
		return nil, fmt.Errorf("%w: no parser for variant %q", domain.ErrParserBackend, domain.VariantLLM)
	}

	result, err := parser.Parse(ctx, port.ParseInput{Text: input.Text})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParserBackend, err)
	}

	return s.finishIngest(ctx, input.UserID, input.BillID, result)
}

// finishIngest runs the shared tail of every parsed path: validator with
// default-category substitution, then the insert-only save.
func (s *billService) finishIngest(ctx context.Context, userID, billID string, parsed *port.ParseResult) (*IngestResult, error) {
	fields := parsed.Fields
	if fields.Category == "" {
		fields.Category = domain.DefaultCategory
	}

	bill, err := validator.Normalize(validator.Input{
		BillID:      billID,
		UserID:      userID,
		Category:    fields.Category,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Description: fields.Description,
		NWType:      fields.NWType,
	}, time.Now())
	if err != nil {
		if parsed.Raw != "" {
			// Keep the model's raw output in the log for diagnosis; the
			// caller only sees the validation failure.
			log.Printf("ingest rejected bill_id=%s: %v (raw model output: %.500s)", billID, err, parsed.Raw)
		}
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	log.Printf("ingest saved bill_id=%s user_id=%s category=%s nw_type=%s amount=%s model=%s",
		bill.BillID, bill.UserID, bill.Category, bill.NWType, bill.AmountString(), parsed.ModelUsed)

	return &IngestResult{
		BillID:      bill.BillID,
		Category:    bill.Category,
		Amount:      bill.AmountString(),
		Date:        bill.Date,
		Description: bill.Description,
		NWType:      bill.NWType,
		Model:       parsed.ModelUsed,
	}, nil
}

// archiveReceipt uploads the original image best-effort; a failed archive
// never fails the ingest that already committed.
func (s *billService) archiveReceipt(ctx context.Context, userID, billID string, image []byte, contentType string) {
	if s.storage == nil || !s.s3cfg.Enabled() {
		return
	}
	key := fmt.Sprintf("receipts/%s/%s", userID, billID)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(image),
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("receipt archive failed bill_id=%s: %v", billID, err)
	}
}

func (s *billService) Delete(ctx context.Context, userID, billID string) error {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	if bill.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.billRepo.Delete(ctx, billID); err != nil {
		return err
	}
	log.Printf("delete_bill bill_id=%s by user_id=%s", billID, userID)
	return nil
}

func (s *billService) Get(ctx context.Context, billID string) (*domain.Bill, error) {
	return s.billRepo.GetByID(ctx, billID)
}

func (s *billService) List(ctx context.Context, userID string) ([]domain.Bill, error) {
	return s.billRepo.List(ctx, userID)
}
