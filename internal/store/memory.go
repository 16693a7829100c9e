package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Gateway with the same observable behaviour as
// Mongo for the operations the service uses. Documents go through a BSON
// round trip on the way in and out, so they look exactly like driver
// results.
type Memory struct {
	mu          sync.RWMutex
	closed      bool
	collections map[string][]bson.M
	unique      map[string][]string
	names       names
}

func NewMemory(allowed ...string) *Memory {
	return &Memory{
		collections: make(map[string][]bson.M),
		unique:      make(map[string][]string),
		names:       newNames(allowed),
	}
}

func (m *Memory) Collection(name string) (Collection, error) {
	if m == nil {
		return nil, ErrNotConnected
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrNotConnected
	}
	if err := m.names.check(name); err != nil {
		return nil, err
	}
	return &memoryCollection{store: m, name: name}, nil
}

func (m *Memory) EnsureUniqueIndex(_ context.Context, collection, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.unique[collection] {
		if f == field {
			return nil
		}
	}
	m.unique[collection] = append(m.unique[collection], field)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrNotConnected
	}
	return nil
}

// Disconnect makes every later lookup fail with ErrNotConnected.
func (m *Memory) Disconnect(context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type memoryCollection struct {
	store *Memory
	name  string
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	return c.Search(ctx, "")
}

func (c *memoryCollection) Search(ctx context.Context, keyword string, fields ...string) ([]bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	needle := strings.ToLower(keyword)
	docs := make([]bson.M, 0)
	for _, doc := range c.store.collections[c.name] {
		if keyword != "" && !containsAny(doc, needle, fields) {
			continue
		}
		cp, err := clone(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, cp)
	}
	return docs, nil
}

func containsAny(doc bson.M, needle string, fields []string) bool {
	for _, field := range fields {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			return true
		}
	}
	return false
}

func (c *memoryCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	for _, doc := range c.store.collections[c.name] {
		if !matches(doc, filter) {
			continue
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "encode document")
		}
		return errors.Wrap(bson.Unmarshal(raw, out), "decode document")
	}
	return ErrNoDocuments
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "insert into %s", c.name)
	}
	var stored bson.M
	if err := bson.Unmarshal(raw, &stored); err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "insert into %s", c.name)
	}

	id, ok := stored["_id"].(primitive.ObjectID)
	if _, present := stored["_id"]; !present {
		id, ok = primitive.NewObjectID(), true
		stored["_id"] = id
	}
	if !ok {
		return primitive.NilObjectID, errors.Errorf("insert into %s: unexpected _id type %T", c.name, stored["_id"])
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	existing := c.store.collections[c.name]
	for _, field := range append([]string{"_id"}, c.store.unique[c.name]...) {
		v, present := stored[field]
		if !present {
			continue
		}
		for _, other := range existing {
			if reflect.DeepEqual(other[field], v) {
				return primitive.NilObjectID, errors.Wrapf(ErrDuplicateKey, "insert into %s: %s", c.name, field)
			}
		}
	}

	c.store.collections[c.name] = append(existing, stored)
	return id, nil
}

func (c *memoryCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, err
	}

	set, err := clone(fields)
	if err != nil {
		return UpdateResult{}, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.collections[c.name]
	for i, doc := range docs {
		if doc["_id"] != id {
			continue
		}
		updated, err := clone(doc)
		if err != nil {
			return UpdateResult{}, err
		}
		res := UpdateResult{MatchedCount: 1}
		for k, v := range set {
			changed, err := setPath(updated, k, v)
			if err != nil {
				return UpdateResult{}, errors.Wrapf(err, "update %s in %s", id.Hex(), c.name)
			}
			if changed {
				res.ModifiedCount = 1
			}
		}
		docs[i] = updated
		return res, nil
	}
	return UpdateResult{}, nil
}

// setPath assigns v at a dotted path the way $set does, creating missing
// intermediate documents. Array elements are not addressed by index.
func setPath(doc bson.M, path string, v any) (bool, error) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok {
			m := bson.M{}
			cur[part] = m
			cur = m
			continue
		}
		m, ok := next.(bson.M)
		if !ok {
			return false, errors.Errorf("cannot create field %q in element %q of type %T", path, part, next)
		}
		cur = m
	}

	last := parts[len(parts)-1]
	old, ok := cur[last]
	cur[last] = v
	return !ok || !reflect.DeepEqual(old, v), nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func clone(doc bson.M) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	var cp bson.M
	if err := bson.Unmarshal(raw, &cp); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	return cp, nil
}
