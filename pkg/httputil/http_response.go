package httputil

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

type ErrorResponse struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, detail string) {
	WriteJSONResponse(w, statusCode, ErrorResponse{
		Code:   statusCode,
		Detail: detail,
	})
}

func WriteJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	if body == nil {
		w.WriteHeader(statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	sonic.ConfigDefault.NewEncoder(w).Encode(body)
}

// DecodeJSON reads at most MaxBodyBytes of r's body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer body.Close()
	return sonic.ConfigDefault.NewDecoder(body).Decode(v)
}
