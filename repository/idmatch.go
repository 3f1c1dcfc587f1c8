package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/imadenugraha/chacrab/chacraberrors"
)

// BackendError wraps err as a [chacraberrors.BackendError] tagged with kind,
// the common path every concrete [Repository] uses to surface driver-level
// failures without leaking raw backend strings to user output.
func BackendError(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	return &chacraberrors.BackendError{Backend: string(kind), Err: err}
}

// MatchPrefix resolves idOrPrefix against candidates (each compared by its
// hyphenless lowercase-hex form), accepting a full id or an unambiguous
// prefix. It is shared by every backend's Get implementation so prefix
// resolution behaves identically regardless of how each backend indexes
// ids physically.
func MatchPrefix(candidates []uuid.UUID, idOrPrefix string) (uuid.UUID, error) {
	needle := strings.ToLower(strings.ReplaceAll(idOrPrefix, "-", ""))

	if full, err := uuid.Parse(idOrPrefix); err == nil {
		for _, c := range candidates {
			if c == full {
				return c, nil
			}
		}

		return uuid.Nil, chacraberrors.ErrNotFound
	}

	var matches []uuid.UUID

	for _, c := range candidates {
		hex := strings.ReplaceAll(c.String(), "-", "")
		if strings.HasPrefix(hex, needle) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, chacraberrors.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, chacraberrors.ErrAmbiguous
	}
}
