package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartledger/internal/domain"
	"smartledger/internal/service"
)

type BillHandler struct {
	billService service.BillService
	authService service.AuthService
}

func NewBillHandler(billService service.BillService, authService service.AuthService) *BillHandler {
	return &BillHandler{billService: billService, authService: authService}
}

// ManualBill saves a fully specified bill after normalization.
func (h *BillHandler) ManualBill(c *gin.Context) {
	var in service.ManualBillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "user_id and bill with bill_id, category and amount are required")
		return
	}

	bill, err := h.billService.CreateManual(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "bill saved", "bill_id": bill.BillID})
}

// UploadQwenVL parses a receipt image with the vision model directly.
func (h *BillHandler) UploadQwenVL(c *gin.Context) {
	h.uploadImage(c, domain.VariantQwenVL)
}

// UploadBaiduQwen runs OCR on the image first and parses the extracted text.
func (h *BillHandler) UploadBaiduQwen(c *gin.Context) {
	h.uploadImage(c, domain.VariantBaiduQwen)
}

func (h *BillHandler) uploadImage(c *gin.Context, variant domain.ParseVariant) {
	identity, ok := h.requireToken(c, c.PostForm("token"))
	if !ok {
		return
	}

	billID := c.PostForm("bill_id")
	if billID == "" {
		RespondError(c, http.StatusBadRequest, "bill_id is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.billService.IngestImage(c.Request.Context(), service.IngestImageInput{
		UserID:      identity.UserID,
		BillID:      billID,
		Image:       image,
		ContentType: header.Header.Get("Content-Type"),
		Variant:     variant,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"result": result})
}

// UploadLLM parses a free-text bill description with the text model.
func (h *BillHandler) UploadLLM(c *gin.Context) {
	identity, ok := h.requireToken(c, c.PostForm("token"))
	if !ok {
		return
	}

	billID := c.PostForm("bill_id")
	if billID == "" {
		RespondError(c, http.StatusBadRequest, "bill_id is required")
		return
	}

	text := c.PostForm("text")
	if text == "" {
		RespondError(c, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.billService.IngestText(c.Request.Context(), service.IngestTextInput{
		UserID: identity.UserID,
		BillID: billID,
		Text:   text,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"result": result})
}

type deleteBillRequest struct {
	Token  string `json:"token" binding:"required"`
	BillID string `json:"bill_id" binding:"required"`
}

// DeleteBill removes a bill owned by the token's user.
func (h *BillHandler) DeleteBill(c *gin.Context) {
	var req deleteBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "token and bill_id are required")
		return
	}

	identity, ok := h.requireToken(c, req.Token)
	if !ok {
		return
	}

	if err := h.billService.Delete(c.Request.Context(), identity.UserID, req.BillID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "bill deleted"})
}

func (h *BillHandler) requireToken(c *gin.Context, token string) (*service.TokenIdentity, bool) {
	identity, err := h.authService.VerifyToken(c.Request.Context(), token)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return identity, true
}
