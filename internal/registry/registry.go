package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cheetahbyte/licensemgr/internal/licensecrypto"
)

const (
	DefaultTTL            = 3 * 24 * time.Hour
	DefaultMaxKeyAttempts = 8
)

type entry struct {
	license License
	seq     uint64
}

// Registry owns every issued license. All check-then-act sequences run
// under mu so it is safe to share between handlers and the sweeper.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	seq     uint64

	now         func() time.Time
	newKey      func() (string, error)
	ttl         time.Duration
	maxAttempts int
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithKeyFunc(fn func() (string, error)) Option {
	return func(r *Registry) { r.newKey = fn }
}

func WithDefaultTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithMaxKeyAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		entries:     make(map[string]entry),
		now:         time.Now,
		newKey:      licensecrypto.KeyGenerator(licensecrypto.DefaultKeyLength),
		ttl:         DefaultTTL,
		maxAttempts: DefaultMaxKeyAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns a snapshot in insertion order. Expired entries that have not
// been swept yet are included.
func (r *Registry) List() []License {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b entry) int { return cmp.Compare(a.seq, b.seq) })

	out := make([]License, len(all))
	for i, e := range all {
		out[i] = e.license
	}
	return out
}

func (r *Registry) Get(key string) (License, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	return e.license, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Create issues a new key for host. expires is in epoch milliseconds; zero
// selects now plus the default TTL.
func (r *Registry) Create(host string, expires int64) (License, error) {
	if host == "" {
		return License{}, ErrHostRequired
	}
	if expires == 0 {
		expires = r.now().Add(r.ttl).UnixMilli()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		key, err := r.newKey()
		if err != nil {
			return License{}, fmt.Errorf("create license: %w", err)
		}
		key = licensecrypto.NormalizeKey(key)
		if _, taken := r.entries[key]; taken || key == "" {
			continue
		}

		r.seq++
		lic := License{Key: key, Host: host, Expires: expires}
		r.entries[key] = entry{license: lic, seq: r.seq}
		return lic, nil
	}

	return License{}, ErrKeySpace
}

func (r *Registry) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return ErrNotFound
	}
	delete(r.entries, key)
	return nil
}

// Validate checks key against host. Keys match exactly as issued. An expired
// entry is removed on the way.
func (r *Registry) Validate(key, host string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return StatusInvalid
	}
	if e.license.expiredAt(r.now()) {
		delete(r.entries, key)
		return StatusExpired
	}
	if e.license.Host != host {
		return StatusWrongProduct
	}
	return StatusValid
}

// Sweep drops every expired entry and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for key, e := range r.entries {
		if e.license.expiredAt(now) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}
