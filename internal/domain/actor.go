package domain

// Role - caller role as issued by the identity provider
type Role string

const (
	RoleAnonymous Role = "anon"
	RoleViewer    Role = "viewer"
	RoleEditor    Role = "editor"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return Role(s)
	default:
		return RoleAnonymous
	}
}

// Actor - the acting-as identity attached to every store call.
// Authorization decisions belong to the store policy layer; the core only
// forwards the actor and reacts to denials.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func Anonymous() Actor {
	return Actor{Role: RoleAnonymous}
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != "" && a.Role != RoleAnonymous
}

// CanEdit reports whether the actor holds a content-editing role.
func (a Actor) CanEdit() bool {
	return a.IsAuthenticated() && (a.Role == RoleEditor || a.Role == RoleAdmin)
}

// UserRef returns the user id for audit columns, nil for anonymous callers.
func (a Actor) UserRef() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
