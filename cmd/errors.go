package cmd

import (
	"errors"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

// exitCodeFor maps an error to the exit code families spec.md §6 defines:
// 0 success, 1 user error, 2 provider/flow failure, 3 I/O.
func exitCodeFor(err error) int {
	var we *wardenerr.Error
	if !errors.As(err, &we) {
		return 1
	}
	switch we.Kind {
	case wardenerr.ConfigInvalid, wardenerr.ProviderUnknown, wardenerr.ProfileUnknown, wardenerr.NoMatchingRule:
		return 1
	case wardenerr.FlowUnsupported, wardenerr.FlowTimeout, wardenerr.StateMismatch,
		wardenerr.AuthorizationDenied, wardenerr.ProviderHTTP, wardenerr.MalformedTokenResponse,
		wardenerr.BindFailed:
		return 2
	case wardenerr.KeyringUnavailable, wardenerr.RepoDetectionFailed, wardenerr.GitConfigWriteFailed:
		return 3
	default:
		return 1
	}
}
