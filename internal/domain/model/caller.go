package model

// CallerKind classifies the authorization level of a request.
type CallerKind int

const (
	CallerAnonymous CallerKind = iota
	CallerAuthenticated
	CallerAdmin
)

func (k CallerKind) String() string {
	switch k {
	case CallerAuthenticated:
		return "authenticated"
	case CallerAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// CallerIdentity is resolved once per request and passed explicitly to the
// services. User is nil for anonymous callers.
type CallerIdentity struct {
	Kind CallerKind
	User *User
}

func Anonymous() CallerIdentity {
	return CallerIdentity{Kind: CallerAnonymous}
}

// IdentityFor tags u as Admin or Authenticated from its IsAdmin flag.
func IdentityFor(u *User) CallerIdentity {
	if u == nil {
		return Anonymous()
	}
	if u.IsAdmin {
		return CallerIdentity{Kind: CallerAdmin, User: u}
	}
	return CallerIdentity{Kind: CallerAuthenticated, User: u}
}

func (c CallerIdentity) IsAnonymous() bool { return c.Kind == CallerAnonymous }
func (c CallerIdentity) IsAdmin() bool     { return c.Kind == CallerAdmin }
