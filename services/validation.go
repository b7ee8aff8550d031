package services

import (
	"chat-memory/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type recordRequest struct {
	ConversationID string `validate:"required,max=64"`
	UserID         string `validate:"required,max=64"`
	TokenUsed      int    `validate:"gte=0"`
}

type conversationRequest struct {
	UserID string `validate:"required,max=64"`
	Title  string `validate:"max=255"`
}

type ownerRequest struct {
	ConversationID string `validate:"required,max=64"`
	UserID         string `validate:"required,max=64"`
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return nil
}
