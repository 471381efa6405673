// Package session keeps the CLI's signed-in session in a local bbolt file,
// under the same keys the web client uses in local storage.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"turnon/internal/models"

	"github.com/golang-jwt/jwt/v4"
	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "turnon.auth"
	tokenKey   = "turnon.auth.token"
	userKey    = "turnon.auth.user"
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// DefaultPath is used when TURNON_SESSION_PATH is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "turnon", "session.db")
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session bucket: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(token string, user models.SessionUser) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Put([]byte(tokenKey), []byte(token)); err != nil {
			return err
		}
		return b.Put([]byte(userKey), encoded)
	})
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Delete([]byte(tokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(userKey))
	})
}

// Token returns the stored bearer token, or "" when there is none or the
// token is a JWT whose exp claim has passed. It satisfies
// apiclient.TokenSource.
func (s *Store) Token() string {
	token, err := s.get(tokenKey)
	if err != nil {
		log.Printf("read session token failed err=%v", err)
		return ""
	}
	if token == "" || expired(token, s.now()) {
		return ""
	}
	return token
}

func (s *Store) User() (models.SessionUser, bool) {
	raw, err := s.get(userKey)
	if err != nil || raw == "" {
		return models.SessionUser{}, false
	}
	var user models.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("decode session user failed err=%v", err)
		return models.SessionUser{}, false
	}
	return user, true
}

// Session is the stored session when a usable token is present.
func (s *Store) Session() (models.Session, bool) {
	token := s.Token()
	if token == "" {
		return models.Session{}, false
	}
	user, _ := s.User()
	return models.Session{Token: token, User: user}, true
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

// expired reports whether token is a JWT past its exp claim. The signature
// is not checked; the backend does that. Opaque tokens never expire here.
func expired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
