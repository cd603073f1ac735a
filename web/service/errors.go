// Package service implements the business logic of the webforge panel:
// accounts, website provisioning, template management and audit logging.
package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure for translation at the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
	KindQuotaExceeded
	KindNotFound
	KindForbidden
)

// Error is a classified service error.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func errOf(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// KindOf extracts the classification of err, defaulting to KindInternal for
// unclassified failures (filesystem, database, decompression).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a service error onto its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindConflict, KindQuotaExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
