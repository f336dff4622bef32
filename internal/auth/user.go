package auth

import "context"

// User is the authenticated caller. ID is the token subject and is what
// projects are owned by.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type contextKey string

const UserContextKey contextKey = "user"

func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserContextKey).(*User)
	return user, ok && user != nil
}
