// file: internal/database/pebble_store.go
// version: 2.0.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package database

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - user:<zero-padded id>   -> User JSON
// - user:email:<email>      -> user_id (unique index)
// - counter:user            -> next user ID
//
// Pebble has no unique constraints, so writes go through mu and the email
// index is checked and written in the same batch as the row.
type PebbleStore struct {
	db *pebble.DB

	mu          sync.Mutex
	lastCreated time.Time
}

// userRecord is the on-disk form. Password is kept here because User does
// not serialize it.
type userRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (r userRecord) user() User {
	return User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FullName:  r.FullName,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
	}
}

func userKey(id int64) []byte {
	return []byte(fmt.Sprintf("user:%020d", id))
}

func userEmailKey(email string) []byte {
	return []byte("user:email:" + strings.ToLower(email))
}

// NewPebbleStore creates a new PebbleDB store
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{FormatMajorVersion: pebble.FormatNewest})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}

	store := &PebbleStore{db: db}

	// Initialize the id counter if it doesn't exist
	key := []byte("counter:user")
	if _, closer, err := db.Get(key); err == pebble.ErrNotFound {
		if err := db.Set(key, []byte("1"), pebble.Sync); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize user counter: %w", err)
		}
	} else if err == nil {
		closer.Close()
	} else {
		db.Close()
		return nil, fmt.Errorf("failed to check user counter: %w", err)
	}

	return store, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func (p *PebbleStore) peekID() (int64, error) {
	value, closer, err := p.db.Get([]byte("counter:user"))
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return strconv.ParseInt(string(value), 10, 64)
}

func (p *PebbleStore) CreateUser(user *User) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.GetUserByEmail(user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	id, err := p.peekID()
	if err != nil {
		return nil, fmt.Errorf("failed to read user counter: %w", err)
	}

	// Keep creation times non-decreasing even if the wall clock steps back.
	now := time.Now().UTC()
	if now.Before(p.lastCreated) {
		now = p.lastCreated
	}

	record := userRecord{
		ID:        id,
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		FullName:  user.FullName,
		Phone:     user.Phone,
		CreatedAt: now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	batch := p.db.NewBatch()
	if err := batch.Set(userKey(id), data, nil); err != nil {
		batch.Close()
		return nil, err
	}
	if err := batch.Set(userEmailKey(user.Email), []byte(strconv.FormatInt(id, 10)), nil); err != nil {
		batch.Close()
		return nil, err
	}
	if err := batch.Set([]byte("counter:user"), []byte(strconv.FormatInt(id+1, 10)), nil); err != nil {
		batch.Close()
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}

	p.lastCreated = now
	created := record.user()
	return &created, nil
}

func (p *PebbleStore) GetUserByEmail(email string) (*User, error) {
	value, closer, err := p.db.Get(userEmailKey(email))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(string(value), 10, 64)
	closer.Close()
	if err != nil {
		return nil, fmt.Errorf("corrupt email index for %s: %w", email, err)
	}
	return p.GetUserByID(id)
}

func (p *PebbleStore) GetUserByID(id int64) (*User, error) {
	value, closer, err := p.db.Get(userKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var record userRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, err
	}
	user := record.user()
	return &user, nil
}

func (p *PebbleStore) ListUsers() ([]User, error) {
	users := []User{}
	// Row keys are zero-padded digits, which keeps the email index
	// (user:email:...) outside these bounds.
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("user:0"),
		UpperBound: []byte("user:;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var record userRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			return nil, err
		}
		users = append(users, record.user())
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID > users[j].ID
	})
	return users, nil
}

func (p *PebbleStore) CountUsers() (int, error) {
	users, err := p.ListUsers()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
