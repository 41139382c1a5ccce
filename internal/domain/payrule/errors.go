package payrule

import "errors"

var (
	ErrPayRuleConfigNotFound = errors.New("pay rule configuration not found")
	ErrClassRangeNotFound    = errors.New("class range not found")
	ErrInvalidClassRange     = errors.New("class range bounds are invalid")
	ErrUnknownClassRange     = errors.New("base pay references an unknown class range")
)
