// Package boxerrors defines the box-add pipeline's error taxonomy.
//
// Every failure the pipeline can produce carries one of the Kind values
// below plus an optional wrapped cause, so callers can branch on errors.Is
// against the package-level sentinels instead of parsing messages.
package boxerrors

import "errors"

// Kind identifies one of the distinct error conditions the box-add pipeline
// can raise. No Kind is ever recovered locally; all of them surface to the
// caller of the pipeline.
type Kind string

// Error kinds, one per row of the error table.
const (
	KindDownloadAlreadyInProgress Kind = "DownloadAlreadyInProgress"
	KindDownloaderError           Kind = "DownloaderError"
	KindBoxMetadataDownloadError  Kind = "BoxMetadataDownloadError"
	KindBoxAddNameRequired        Kind = "BoxAddNameRequired"
	KindBoxAddDirectVersion       Kind = "BoxAddDirectVersion"
	KindBoxAlreadyExists          Kind = "BoxAlreadyExists"
	KindBoxChecksumMismatch       Kind = "BoxChecksumMismatch"
	KindBoxServerNotSet           Kind = "BoxServerNotSet"
	KindBoxAddShortNotFound       Kind = "BoxAddShortNotFound"
	KindBoxAddMetadataMultiURL    Kind = "BoxAddMetadataMultiURL"
	KindBoxAddNameMismatch        Kind = "BoxAddNameMismatch"
	KindBoxAddNoMatchingVersion   Kind = "BoxAddNoMatchingVersion"
	KindBoxAddNoMatchingProvider  Kind = "BoxAddNoMatchingProvider"
)

// BoxError is the sum type every box-add failure is expressed as.
type BoxError struct {
	Kind  Kind
	Msg   string
	Cause error
}

// Error implements the error interface.
func (e *BoxError) Error() string {
	if e.Cause != nil {
		if e.Msg == "" {
			return string(e.Kind) + ": " + e.Cause.Error()
		}
		return e.Msg + ": " + e.Cause.Error()
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *BoxError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel for the same Kind, so
// errors.Is(err, boxerrors.ErrBoxAlreadyExists) works regardless of
// message or cause.
func (e *BoxError) Is(target error) bool {
	var other *BoxError
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.Msg == "" && other.Cause == nil
	}
	return false
}

// New builds a BoxError of the given kind with a message.
func New(kind Kind, msg string) error {
	return &BoxError{Kind: kind, Msg: msg}
}

// Wrap builds a BoxError of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, msg string, cause error) error {
	if cause == nil {
		return New(kind, msg)
	}
	return &BoxError{Kind: kind, Msg: msg, Cause: cause}
}

// GetKind returns the Kind carried by err, and false if err is not (or does
// not wrap) a *BoxError.
func GetKind(err error) (Kind, bool) {
	var be *BoxError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

// Sentinels, one per Kind, for errors.Is checks against a bare kind with no
// message or cause attached (e.g. errors.Is(err, ErrBoxAlreadyExists)).
var (
	ErrDownloadAlreadyInProgress = &BoxError{Kind: KindDownloadAlreadyInProgress}
	ErrDownloaderError           = &BoxError{Kind: KindDownloaderError}
	ErrBoxMetadataDownloadError  = &BoxError{Kind: KindBoxMetadataDownloadError}
	ErrBoxAddNameRequired        = &BoxError{Kind: KindBoxAddNameRequired}
	ErrBoxAddDirectVersion       = &BoxError{Kind: KindBoxAddDirectVersion}
	ErrBoxAlreadyExists          = &BoxError{Kind: KindBoxAlreadyExists}
	ErrBoxChecksumMismatch       = &BoxError{Kind: KindBoxChecksumMismatch}
	ErrBoxServerNotSet           = &BoxError{Kind: KindBoxServerNotSet}
	ErrBoxAddShortNotFound       = &BoxError{Kind: KindBoxAddShortNotFound}
	ErrBoxAddMetadataMultiURL    = &BoxError{Kind: KindBoxAddMetadataMultiURL}
	ErrBoxAddNameMismatch        = &BoxError{Kind: KindBoxAddNameMismatch}
	ErrBoxAddNoMatchingVersion   = &BoxError{Kind: KindBoxAddNoMatchingVersion}
	ErrBoxAddNoMatchingProvider  = &BoxError{Kind: KindBoxAddNoMatchingProvider}
)
