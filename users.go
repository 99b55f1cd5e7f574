package valuta

import (
	"slices"
	"strings"
	"time"
)

// User is a registered account as stored in users.json.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Salt         string    `json:"salt"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// UserRepository stores the registered users.
type UserRepository struct {
	file *JSONFile
}

// NewUserRepository returns a repository over the users file at path.
func NewUserRepository(path string, cache *FileCache) *UserRepository {
	return &UserRepository{file: &JSONFile{Path: path, Cache: cache}}
}

func (r *UserRepository) all() ([]User, error) {
	var users []User
	if _, err := r.file.Read(&users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns the user named username, or false if there is none.
func (r *UserRepository) Get(username string) (User, bool, error) {
	username = strings.TrimSpace(username)
	users, err := r.all()
	if err != nil {
		return User{}, false, err
	}
	i := slices.IndexFunc(users, func(u User) bool { return u.Username == username })
	if i < 0 {
		return User{}, false, nil
	}
	return users[i], true, nil
}

// Add appends u to the users file.
func (r *UserRepository) Add(u User) error {
	users, err := r.all()
	if err != nil {
		return err
	}
	return r.file.WriteAtomic(append(users, u))
}
