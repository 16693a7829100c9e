// Package store is the document store gateway. It owns the database
// connection and hands out per-name collection handles to the HTTP layer.
//
// Two implementations share the same contract: Mongo, backed by the
// official driver, and Memory, an in-process store used by tests and local
// runs without a database.
package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotConnected          = errors.New("store: not connected")
	ErrInvalidCollectionName = errors.New("store: invalid collection name")
	ErrUnknownCollection     = errors.New("store: unknown collection")
	ErrNoDocuments           = errors.New("store: no documents in result")
	ErrDuplicateKey          = errors.New("store: duplicate key")
)

// Gateway resolves collection names to handles. It performs no existence
// check: a collection that was never written to reads as empty.
type Gateway interface {
	Collection(name string) (Collection, error)
}

// Pinger is implemented by gateways that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Collection interface {
	Name() string

	// FindAll returns every document in store order.
	FindAll(ctx context.Context) ([]bson.M, error)

	// Search returns documents where any of fields contains keyword,
	// ignoring case. An empty keyword matches every document.
	Search(ctx context.Context, keyword string, fields ...string) ([]bson.M, error)

	// FindOne decodes the first document whose top-level fields equal
	// filter into out. Returns ErrNoDocuments when nothing matches.
	FindOne(ctx context.Context, filter bson.M, out any) error

	// InsertOne stores doc and returns its _id. A unique index violation
	// is reported as ErrDuplicateKey.
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)

	// UpdateByID sets fields on the document with the given _id.
	UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (UpdateResult, error)
}

type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// names restricts which collections may be resolved. A nil allow-list
// admits every valid name.
type names struct {
	allowed map[string]struct{}
}

func newNames(allowed []string) names {
	if len(allowed) == 0 {
		return names{}
	}
	n := names{allowed: make(map[string]struct{}, len(allowed))}
	for _, name := range allowed {
		if name = strings.TrimSpace(name); name != "" {
			n.allowed[name] = struct{}{}
		}
	}
	return n
}

func (n names) check(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if n.allowed == nil {
		return nil
	}
	if _, ok := n.allowed[name]; !ok {
		return errors.Wrapf(ErrUnknownCollection, "%q", name)
	}
	return nil
}

// ValidateName applies MongoDB's collection naming rules.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.Wrap(ErrInvalidCollectionName, "empty name")
	case strings.ContainsAny(name, "$\x00"):
		return errors.Wrapf(ErrInvalidCollectionName, "%q contains a reserved character", name)
	case strings.HasPrefix(name, "system."):
		return errors.Wrapf(ErrInvalidCollectionName, "%q is reserved", name)
	}
	return nil
}
