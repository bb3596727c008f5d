package entity

// NoBalancesMessage is shown when the API knows the address but reports no balances on the chain.
const NoBalancesMessage = "You don't have any balances on that chain!"

// FetchFailedMessage is shown for transport or parse failures when those are surfaced to the UI.
const FetchFailedMessage = "Unable to load balances for that chain."

// FetchStatus distinguishes the two committed outcomes. Pending is not a status:
// it is the absence of a cache entry.
type FetchStatus int

const (
	FetchSuccess FetchStatus = iota
	FetchError
)

func (s FetchStatus) String() string {
	switch s {
	case FetchSuccess:
		return "success"
	case FetchError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchResult is the committed outcome of a fetch for one (address, network) pair.
type FetchResult struct {
	Status   FetchStatus
	Balances []BalanceRecord
	Message  string
}

// SuccessResult wraps a normalized balance list.
func SuccessResult(balances []BalanceRecord) FetchResult {
	return FetchResult{Status: FetchSuccess, Balances: balances}
}

// ErrorResult wraps a user-facing error message.
func ErrorResult(message string) FetchResult {
	return FetchResult{Status: FetchError, Message: message}
}

// IsError reports whether the result should be rendered as the error view.
func (r FetchResult) IsError() bool {
	return r.Status == FetchError
}
