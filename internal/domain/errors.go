package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrMalformedRecord       = errors.New("malformed record")
	ErrShapeMismatch         = errors.New("template shape mismatch")
	ErrMissingParameter      = errors.New("missing datum parameter")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrMissingCredentials    = errors.New("missing credentials")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUnsupported           = errors.New("operation not supported by venue")
)
