package store

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration

	// Collections is the optional allow-list for Collection lookups.
	Collections []string
}

// Mongo is the Gateway backed by a single long-lived driver client. The
// driver pools connections, so one value is shared by every request.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	names  names
}

// Connect dials the server and pings the primary, so a returned *Mongo is
// known to be reachable.
func Connect(ctx context.Context, opts Options) (*Mongo, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}

	return &Mongo{
		client: client,
		db:     client.Database(opts.Database),
		names:  newNames(opts.Collections),
	}, nil
}

func (m *Mongo) Collection(name string) (Collection, error) {
	if m == nil || m.db == nil {
		return nil, ErrNotConnected
	}
	if err := m.names.check(name); err != nil {
		return nil, err
	}
	return &mongoCollection{coll: m.db.Collection(name)}, nil
}

// EnsureUniqueIndex creates a unique ascending index on field. It is a
// no-op when an identical index already exists.
func (m *Mongo) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	if m == nil || m.db == nil {
		return ErrNotConnected
	}
	_, err := m.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrapf(err, "create unique index %s.%s", collection, field)
}

func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.client == nil {
		return ErrNotConnected
	}
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	return c.find(ctx, bson.M{})
}

func (c *mongoCollection) Search(ctx context.Context, keyword string, fields ...string) ([]bson.M, error) {
	if keyword == "" {
		return c.find(ctx, bson.M{})
	}
	if len(fields) == 0 {
		return []bson.M{}, nil
	}
	return c.find(ctx, keywordFilter(keyword, fields))
}

func (c *mongoCollection) find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", c.Name())
	}
	defer cursor.Close(ctx)

	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode %s", c.Name())
	}
	if docs == nil {
		docs = make([]bson.M, 0)
	}
	return docs, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M, out any) error {
	err := c.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocuments
	}
	return errors.Wrapf(err, "find one in %s", c.Name())
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.Wrapf(ErrDuplicateKey, "insert into %s: %v", c.Name(), err)
		}
		return primitive.NilObjectID, errors.Wrapf(err, "insert into %s", c.Name())
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.Errorf("insert into %s: unexpected _id type %T", c.Name(), res.InsertedID)
	}
	return id, nil
}

func (c *mongoCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, fields bson.M) (UpdateResult, error) {
	res, err := c.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return UpdateResult{}, errors.Wrapf(err, "update %s in %s", id.Hex(), c.Name())
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// keywordFilter matches keyword literally and case-insensitively against
// the string form of each field. $convert keeps numbers searchable and
// turns missing or unconvertible values into "".
func keywordFilter(keyword string, fields []string) bson.M {
	pattern := regexp.QuoteMeta(keyword)

	clauses := make(bson.A, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, bson.M{
			"$regexMatch": bson.M{
				"input": bson.M{
					"$convert": bson.M{
						"input":   "$" + field,
						"to":      "string",
						"onError": "",
						"onNull":  "",
					},
				},
				"regex":   pattern,
				"options": "i",
			},
		})
	}

	return bson.M{"$expr": bson.M{"$or": clauses}}
}
