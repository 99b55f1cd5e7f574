package valuta

import "strings"

// Session remembers the logged in user between command runs.
type Session struct {
	file *JSONFile
}

type sessionDoc struct {
	Username string `json:"username,omitempty"`
}

// NewSession returns a session stored at path.
func NewSession(path string, cache *FileCache) *Session {
	return &Session{file: &JSONFile{Path: path, Cache: cache}}
}

// SetUser records username as the logged in user.
func (s *Session) SetUser(username string) error {
	return s.file.WriteAtomic(sessionDoc{Username: strings.TrimSpace(username)})
}

// User returns the logged in user, or "" if nobody is.
func (s *Session) User() (string, error) {
	var doc sessionDoc
	if _, err := s.file.Read(&doc); err != nil {
		return "", err
	}
	return doc.Username, nil
}

// Clear logs the current user out.
func (s *Session) Clear() error {
	return s.file.WriteAtomic(sessionDoc{})
}
