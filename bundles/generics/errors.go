package generics

import (
	"net/http"

	"github.com/gazebo-web/gz-go/v7"
)

// NewForbiddenError returns an ErrMsg for operations the requesting user is
// not allowed to perform on an existing resource. It reuses gz-go's
// unauthorized error code but replies with a 403 status.
func NewForbiddenError(reason string) *gz.ErrMsg {
	em := gz.NewErrorMessageWithArgs(gz.ErrorUnauthorized, nil, []string{reason})
	em.StatusCode = http.StatusForbidden
	return em
}

// NewUnprocessableError returns an invalid form value ErrMsg replying with a
// 422 status. The extra slice holds the offending fields.
func NewUnprocessableError(base error, extra []string) *gz.ErrMsg {
	em := gz.NewErrorMessageWithArgs(gz.ErrorFormInvalidValue, base, extra)
	em.StatusCode = http.StatusUnprocessableEntity
	return em
}

// IsForbidden returns true if the given ErrMsg was created by NewForbiddenError.
func IsForbidden(em *gz.ErrMsg) bool {
	return em != nil && em.ErrCode == gz.ErrorUnauthorized && em.StatusCode == http.StatusForbidden
}
