package valuta

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum number of characters of a password.
const MinPasswordLength = 8

// Auth registers and authenticates users.
type Auth struct {
	Users *UserRepository
	// Cost is the bcrypt cost, bcrypt.DefaultCost when zero.
	Cost int
	// Now returns the registration time, time.Now by default.
	Now func() time.Time
}

func (a *Auth) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Register creates a new user.
func (a *Auth) Register(username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, validationf("username must not be empty")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return User{}, validationf("password must be at least %d characters long", MinPasswordLength)
	}
	if _, exists, err := a.Users.Get(username); err != nil {
		return User{}, err
	} else if exists {
		return User{}, fmt.Errorf("%w: user %q already exists", ErrAuth, username)
	}

	cost := a.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, validationf("password must be at most 72 bytes long")
	}
	if err != nil {
		return User{}, fmt.Errorf("cannot hash password: %w", err)
	}
	u := User{
		Username:     username,
		PasswordHash: string(hash),
		Salt:         bcryptSalt(hash),
		RegisteredAt: a.now().UTC(),
	}
	if err := a.Users.Add(u); err != nil {
		return User{}, fmt.Errorf("cannot save user %q: %w", username, err)
	}
	return u, nil
}

// Login checks the user's password.
func (a *Auth) Login(username, password string) (User, error) {
	u, ok, err := a.Users.Get(username)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, fmt.Errorf("%w: user %q not found", ErrAuth, strings.TrimSpace(username))
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, fmt.Errorf("%w: wrong password", ErrAuth)
	}
	return u, nil
}

// bcryptSalt extracts the encoded salt from a "$2a$cc$<22 salt><31 hash>" hash.
func bcryptSalt(hash []byte) string {
	const start, size = 7, 22
	if len(hash) < start+size {
		return ""
	}
	return string(hash[start : start+size])
}
