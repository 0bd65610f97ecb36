package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the control surface can map it to a
// user-facing message and HTTP status without inspecting error strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindDevice       // no or unreachable input device
	KindLoad         // native library or model missing / failed to initialise
	KindInference    // foreign call returned a failure status
	KindTranscribe   // no audio captured, or backend transport failure
	KindConfig       // missing required credential or setting
)

func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindLoad:
		return "load"
	case KindInference:
		return "inference"
	case KindTranscribe:
		return "transcribe"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is the typed failure carried from the audio pipeline, the native
// bridge and the providers up to the dispatch layer.
type Error struct {
	Kind  Kind
	Msg   string
	HR    int32 // raw HRESULT-style status for inference failures, 0 otherwise
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Msg + ": " + e.cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the failure kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindDevice, KindConfig:
		return http.StatusBadRequest
	case KindLoad:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func DeviceErr(format string, args ...any) *Error {
	return &Error{Kind: KindDevice, Msg: fmt.Sprintf(format, args...)}
}

func LoadErr(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindLoad, Msg: fmt.Sprintf(format, args...), cause: cause}
}

// InferenceErr records a failed foreign call together with the raw status code.
func InferenceErr(hr int32, method string) *Error {
	return &Error{
		Kind: KindInference,
		Msg:  fmt.Sprintf("%s failed: HRESULT 0x%08X", method, uint32(hr)),
		HR:   hr,
	}
}

func TranscribeErr(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindTranscribe, Msg: fmt.Sprintf(format, args...), cause: cause}
}

func ConfigErr(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
