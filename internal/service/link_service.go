package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/metrics"
)

const (
	LinkCodeLength   = 6
	linkCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Attempts to draw a code not pending on another account
	maxIssueAttempts = 5
)

// LinkService pairs a Telegram chat with a web account through a short
// single-use code: the web side issues it, the chat redeems it.
type LinkService struct {
	repo    repository.UsersRepositoryI
	entropy io.Reader
}

func NewLinkService(usersRepo repository.UsersRepositoryI) *LinkService {
	return &LinkService{
		repo:    usersRepo,
		entropy: rand.Reader,
	}
}

// WithEntropy returns a copy of ls drawing codes from r.
func (ls *LinkService) WithEntropy(r io.Reader) *LinkService {
	cp := *ls
	cp.entropy = r
	return &cp
}

func (ls *LinkService) IssueCode(ctx context.Context, uid uuid.UUID) (string, error) {
	for i := 0; i < maxIssueAttempts; i++ {
		code, err := newLinkCode(ls.entropy)
		if err != nil {
			return "", errors.New("generating link code error: " + err.Error())
		}
		err = ls.repo.SetLinkCode(ctx, uid, code)
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, errorvalues.ErrUserNotFound):
			return "", err
		case errors.Is(err, errorvalues.ErrConflict):
			continue
		default:
			return "", errors.New("repository saving code error: " + err.Error())
		}
	}
	return "", errors.New("couldn't draw a free link code")
}

func (ls *LinkService) RedeemCode(ctx context.Context, chatID, code string) (uuid.UUID, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != LinkCodeLength {
		metrics.IncrementLinkCodeRedeemed("not_found")
		return uuid.UUID{}, errorvalues.ErrLinkCodeNotFound
	}
	uid, err := ls.repo.RedeemLinkCode(ctx, code, chatID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrLinkCodeNotFound):
			metrics.IncrementLinkCodeRedeemed("not_found")
			return uuid.UUID{}, err
		case errors.Is(err, errorvalues.ErrChatAlreadyLinked):
			metrics.IncrementLinkCodeRedeemed("conflict")
			return uuid.UUID{}, err
		}
		metrics.IncrementLinkCodeRedeemed("error")
		return uuid.UUID{}, errors.New("repository redeeming error: " + err.Error())
	}
	metrics.IncrementLinkCodeRedeemed("linked")
	return uid, nil
}

func (ls *LinkService) ResolveByChatID(ctx context.Context, chatID string) (uuid.UUID, error) {
	user, err := ls.repo.FindByTelegramID(ctx, chatID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAccountNotLinked) {
			return uuid.UUID{}, err
		}
		return uuid.UUID{}, errors.New("repository searching error: " + err.Error())
	}
	return user.ID, nil
}

func newLinkCode(r io.Reader) (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(linkCodeAlphabet)))
	for i := 0; i < LinkCodeLength; i++ {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(linkCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
