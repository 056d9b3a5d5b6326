package registry

import (
	"errors"
	"time"
)

var (
	ErrHostRequired = errors.New("no host defined in request body")
	ErrNotFound     = errors.New("license not found")
	ErrKeySpace     = errors.New("could not generate a unique license key")
)

// License is one issued key. Expires is milliseconds since the Unix epoch.
type License struct {
	Key     string `json:"key"`
	Host    string `json:"host"`
	Expires int64  `json:"expires"`
}

func (l License) ExpiresAt() time.Time {
	return time.UnixMilli(l.Expires)
}

func (l License) expiredAt(now time.Time) bool {
	return l.Expires < now.UnixMilli()
}

type Status int

const (
	StatusValid Status = iota
	StatusInvalid
	StatusExpired
	StatusWrongProduct
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusExpired:
		return "expired"
	case StatusWrongProduct:
		return "wrong_product"
	default:
		return "unknown"
	}
}
