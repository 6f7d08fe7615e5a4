package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
)

// BearerResolver resolves bearer tokens. The account must still exist; any
// failure is reported as ErrUnauthorized.
type BearerResolver struct {
	tokens TokenParser
	users  UserServiceI
}

func NewBearerResolver(tokens TokenParser, users UserServiceI) *BearerResolver {
	return &BearerResolver{
		tokens: tokens,
		users:  users,
	}
}

func (br *BearerResolver) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	uid, err := br.tokens.Resolve(token)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUnauthorized) {
			return uuid.UUID{}, err
		}
		return uuid.UUID{}, errorvalues.ErrInvalidToken
	}
	user, err := br.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrNotFound) {
			return uuid.UUID{}, errorvalues.ErrInvalidToken
		}
		return uuid.UUID{}, fmt.Errorf("%w: %v", errorvalues.ErrInvalidToken, err)
	}
	return user.ID, nil
}

// ChatResolver resolves Telegram chat ids bound through the link flow.
type ChatResolver struct {
	links LinkServiceI
}

func NewChatResolver(links LinkServiceI) *ChatResolver {
	return &ChatResolver{
		links: links,
	}
}

func (cr *ChatResolver) Resolve(ctx context.Context, chatID string) (uuid.UUID, error) {
	return cr.links.ResolveByChatID(ctx, chatID)
}
