/*
Package req provides helpers for binding HTTP request data.

It wraps JSON decoding with strict field and trailing-content checks and
converts failures into the application's CustomError values.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"takeapp/internal/pkg/errs"
)

// MaxBodySize caps the request body accepted by BindJSON (1 MB). Avatar
// bytes travel over the screen socket, not through these endpoints.
const MaxBodySize int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
