package errors

// Kind classifies where an error comes from, independently of its code.
type Kind int

const (
	KindUnknown Kind = iota

	// KindTransport is a request that could not complete.
	KindTransport

	// KindMalformed is a response that completed but misses required fields
	// or cannot be decoded.
	KindMalformed

	// KindValidation is a client-side precondition that failed before any
	// request was sent.
	KindValidation

	// KindProgramming is a wiring defect.
	KindProgramming

	// KindAPI is an error returned by the remote API.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed response"
	case KindValidation:
		return "validation"
	case KindProgramming:
		return "programming"
	case KindAPI:
		return "api"
	}
	return "unknown"
}

func Transport() ErrorEnricher   { return WithKind(KindTransport) }
func Malformed() ErrorEnricher   { return WithKind(KindMalformed) }
func Validation() ErrorEnricher  { return WithKind(KindValidation) }
func Programming() ErrorEnricher { return WithKind(KindProgramming) }
func API() ErrorEnricher         { return WithKind(KindAPI) }
