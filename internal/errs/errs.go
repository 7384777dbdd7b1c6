package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindAsset    Kind = "asset"
	KindConfig   Kind = "config"
	KindTimeline Kind = "timeline"
	KindSync     Kind = "sync"
	KindEncode   Kind = "encode"
	KindTimeout  Kind = "timeout"
)

// NoSlide marks errors that are not tied to a particular slide.
const NoSlide = -1

// Error is the single error type returned across package boundaries.
// Slide is the zero-based slide index, or NoSlide.
type Error struct {
	Kind  Kind
	Slide int
	Op    string
	Err   error
}

// Sentinels for errors.Is. Only Kind is compared.
var (
	ErrAsset    = &Error{Kind: KindAsset, Slide: NoSlide}
	ErrConfig   = &Error{Kind: KindConfig, Slide: NoSlide}
	ErrTimeline = &Error{Kind: KindTimeline, Slide: NoSlide}
	ErrSync     = &Error{Kind: KindSync, Slide: NoSlide}
	ErrEncode   = &Error{Kind: KindEncode, Slide: NoSlide}
	ErrTimeout  = &Error{Kind: KindTimeout, Slide: NoSlide}
)

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Slide != NoSlide {
		msg += fmt.Sprintf(" (slide %d)", e.Slide+1)
	}
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, slide int, op string, err error) *Error {
	return &Error{Kind: kind, Slide: slide, Op: op, Err: err}
}

func Asset(slide int, op string, err error) error {
	return newError(KindAsset, slide, op, err)
}

func Config(slide int, format string, args ...any) error {
	return newError(KindConfig, slide, "", fmt.Errorf(format, args...))
}

func Timeline(slide int, format string, args ...any) error {
	return newError(KindTimeline, slide, "", fmt.Errorf(format, args...))
}

func Sync(format string, args ...any) error {
	return newError(KindSync, NoSlide, "", fmt.Errorf(format, args...))
}

func Encode(slide int, op string, err error) error {
	return newError(KindEncode, slide, op, err)
}

func Timeout(slide int, op string, err error) error {
	return newError(KindTimeout, slide, op, err)
}

// SlideOf returns the slide index carried by err, or NoSlide.
func SlideOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Slide
	}
	return NoSlide
}

// KindOf returns the kind carried by err and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// AtSlide attaches slide to err. A typed error without a slide gets a copy
// with the index set; other errors are returned unchanged.
func AtSlide(err error, slide int) error {
	var e *Error
	if !errors.As(err, &e) || e.Slide != NoSlide {
		return err
	}
	cp := *e
	cp.Slide = slide
	return &cp
}
