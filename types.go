package authkit

import "context"

// UserRecord is the minimal account shape the lifecycle service needs
// from the host application.
type UserRecord struct {
	ID           int64
	Email        string
	Nickname     string
	PasswordHash string
}

// CreateUserInput is the input for UserProvider.CreateUser. PasswordHash
// is already bcrypt-encoded.
type CreateUserInput struct {
	Email        string
	Nickname     string
	PasswordHash string
}

// UserProvider is implemented by the host application's user storage.
// authkit owns no user persistence; it only reads accounts for login and
// writes one on registration.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUserByID(ctx context.Context, id int64) (*UserRecord, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*UserRecord, error)
}

// TokenPair is returned by Login and Refresh under the token strategy.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
}

// RegisterInput is the input for Service.Register and
// SessionService.Register.
type RegisterInput struct {
	Email    string
	Nickname string
	Password string
}
