package api

import (
	"github.com/google/uuid"
)

type TokenIssuer interface {
	Issue(uid uuid.UUID) (string, error)
}
