package vault

import "strings"

// Kind identifies which token a vault entry holds. Each kind has its own key
// alias, so rotating or losing one key leaves the other token intact.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{Access, Refresh}

// ParseKind accepts "access" or "refresh" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "access":
		return Access, nil
	case "refresh":
		return Refresh, nil
	default:
		return 0, ErrUnknownKind
	}
}

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

func (k Kind) valid() bool {
	return k == Access || k == Refresh
}

// Alias is the key store alias protecting this kind.
func (k Kind) Alias() string {
	return k.String() + "_token_key"
}

// ValueKey is the storage key of the base64 ciphertext.
func (k Kind) ValueKey() string {
	return k.String() + "_token"
}

// NonceKey is the storage key of the base64 nonce.
func (k Kind) NonceKey() string {
	return k.String() + "_token_nonce"
}
