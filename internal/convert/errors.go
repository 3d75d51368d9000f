package convert

import (
	"errors"
	"fmt"
)

// Kind classifies a conversion failure. Every failure a caller can see carries
// exactly one Kind; callers branch on it, never on message text.
type Kind string

const (
	KindNone                    Kind = ""
	KindEmptyInput              Kind = "EmptyInput"
	KindInvalidAudio            Kind = "InvalidAudio"
	KindInvalidRequest          Kind = "InvalidRequest"
	KindUnintelligible          Kind = "Unintelligible"
	KindServiceUnavailable      Kind = "ServiceUnavailable"
	KindTranslationServiceError Kind = "TranslationServiceError"
)

// ErrNoSpeech is returned by recognizers when the audio decodes but nothing
// could be transcribed with confidence.
var ErrNoSpeech = errors.New("no speech recognized")

// Error is a tagged conversion failure.
type Error struct {
	Kind Kind
	Op   Operation
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Message()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return string(e.Op) + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the user-facing text for a kind.
func (k Kind) Message() string {
	switch k {
	case KindEmptyInput:
		return "please provide some input first"
	case KindInvalidAudio:
		return "audio could not be decoded (upload WAV or MP3)"
	case KindInvalidRequest:
		return "invalid request"
	case KindUnintelligible:
		return "could not understand the audio, try again"
	case KindServiceUnavailable:
		return "speech service unavailable, please retry"
	case KindTranslationServiceError:
		return "translation service error"
	}
	return "conversion failed"
}

// KindOf extracts the kind from err. It returns KindNone for nil and
// KindServiceUnavailable for untagged errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindServiceUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func fail(op Operation, k Kind, err error) *Error {
	return &Error{Kind: k, Op: op, Err: err}
}
