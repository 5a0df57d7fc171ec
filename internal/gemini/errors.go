package gemini

import (
	"errors"
	"strings"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify maps a raw Gemini API failure onto the closed providers.ErrorKind
// set. The structured signal (gRPC status or HTTP status, depending on
// transport) is preferred; message text is only consulted when neither is
// present in the error chain.
func classify(model string, err error) *providers.Error {
	if st, ok := statusFromChain(err); ok {
		switch st {
		case codes.NotFound:
			return providers.NewError(providers.KindModelMissing, model, err)
		case codes.ResourceExhausted, codes.Unavailable:
			return providers.NewError(providers.KindTransient, model, err)
		case codes.PermissionDenied, codes.Unauthenticated:
			return providers.NewError(providers.KindAccessDenied, model, err)
		}
		return providers.NewError(providers.KindFatal, model, err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 404:
			return providers.NewError(providers.KindModelMissing, model, err)
		case 429, 503:
			return providers.NewError(providers.KindTransient, model, err)
		case 401, 403:
			return providers.NewError(providers.KindAccessDenied, model, err)
		}
		return providers.NewError(providers.KindFatal, model, err)
	}

	return providers.NewError(kindFromMessage(err.Error()), model, err)
}

func statusFromChain(err error) (codes.Code, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := status.FromError(e); ok && st.Code() != codes.Unknown {
			return st.Code(), true
		}
	}
	return codes.Unknown, false
}

// kindFromMessage is the last-resort substring classification, kept for
// errors the SDK surfaces as bare text.
func kindFromMessage(msg string) providers.ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "not found") || strings.Contains(msg, "404"):
		return providers.KindModelMissing
	case strings.Contains(msg, "503") || strings.Contains(lower, "service unavailable") ||
		strings.Contains(msg, "429") || strings.Contains(lower, "overloaded"):
		return providers.KindTransient
	case strings.Contains(msg, "403") || strings.Contains(msg, "PERMISSION_DENIED") ||
		strings.Contains(msg, "401") || strings.Contains(msg, "API_KEY"):
		return providers.KindAccessDenied
	}
	return providers.KindFatal
}
