// Package store defines the transaction store boundary: complete snapshots
// pushed to subscribers, plus create and delete.
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"fintrack/internal/core"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrUnavailable = errors.New("store unavailable")
)

// Event carries either a complete snapshot of an owner's transactions or a
// subscription failure. Snapshots replace whatever the subscriber held.
type Event struct {
	Snapshot []core.Transaction
	Err      error
}

type Store interface {
	// Subscribe delivers the current snapshot and then a fresh one after
	// every change. The channel is closed once ctx is done.
	Subscribe(ctx context.Context, owner string) (<-chan Event, error)
	// Create persists t and returns its store-assigned id.
	Create(ctx context.Context, owner string, t core.Transaction) (string, error)
	Delete(ctx context.Context, owner, id string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

var unsafeAppID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeAppID makes an application id safe for use as a path segment.
func SanitizeAppID(appID string) string {
	return unsafeAppID.ReplaceAllString(strings.ReplaceAll(appID, "/", "-"), "_")
}

// Namespace is the collection path of owner's transactions.
func Namespace(appID, owner string) string {
	return "artifacts/" + SanitizeAppID(appID) + "/users/" + owner + "/expenses"
}

// LocalOwner is the pseudo-owner used when no identity is configured.
func LocalOwner(appID string) string {
	return "local_" + SanitizeAppID(appID)
}

// LocalKey is the key under which the local store keeps an app's records.
func LocalKey(appID string) string {
	return "fintrack:" + SanitizeAppID(appID) + ":expenses"
}

// Prepare applies creation defaults and validates t before it is stored.
func Prepare(t core.Transaction) (core.Transaction, error) {
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Send delivers ev on a one-slot channel, replacing an undelivered older
// event. Only a single goroutine may send on ch.
func Send(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- ev
}
