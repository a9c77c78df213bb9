package domain

// IdentityKind distinguishes trial sessions from authenticated accounts.
type IdentityKind string

const (
	IdentityGuest   IdentityKind = "guest"
	IdentityAccount IdentityKind = "account"
)

// Identity is resolved once per request. Exactly one of GuestScope or
// AccountID is set.
type Identity struct {
	Kind       IdentityKind
	GuestScope string
	AccountID  string
	IsAdmin    bool
}

func Guest(scope string) Identity {
	return Identity{Kind: IdentityGuest, GuestScope: scope}
}

func AccountIdentity(accountID string, isAdmin bool) Identity {
	return Identity{Kind: IdentityAccount, AccountID: accountID, IsAdmin: isAdmin}
}

func (i Identity) IsGuest() bool {
	return i.Kind != IdentityAccount
}

// Key identifies the session owning wizard and result state.
func (i Identity) Key() string {
	if i.IsGuest() {
		return "guest:" + i.GuestScope
	}
	return "account:" + i.AccountID
}

func (i Identity) String() string {
	return i.Key()
}
