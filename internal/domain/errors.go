package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateUserID = errors.New("user_id already exists")
	ErrDuplicateBillID = errors.New("bill_id already exists")

	ErrMissingBillID   = errors.New("bill_id must not be empty")
	ErrMissingCategory = errors.New("category must not be empty")
	ErrInvalidCategory = errors.New("category is not in the allowed list")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidDate     = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrInvalidNWType   = errors.New("nw_type must be 基础支出 or 娱乐支出")
	ErrEmptyInput      = errors.New("input must not be empty")

	ErrParserBackend = errors.New("parser backend failure")
)
