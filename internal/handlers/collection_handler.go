package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/lessons-api/internal/errs"
	"github.com/harentsoaR/lessons-api/internal/store"
)

const collectionKey = "collection"

var errNoCollection = errors.New("no collection bound to request")

// BindCollection resolves the :collectionName segment into a collection
// handle before the route handler runs. Lookup failures abort the chain
// and are rendered by the error middleware.
func (h *Handler) BindCollection() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("collectionName")

		coll, err := h.Store.Collection(name)
		if err != nil {
			_ = c.Error(errors.Wrapf(err, "bind collection %q", name))
			c.Abort()
			return
		}

		h.Log.Debug().Str("collection", coll.Name()).Msg("collection bound")
		c.Set(collectionKey, coll)
		c.Next()
	}
}

func boundCollection(c *gin.Context) (store.Collection, error) {
	if v, ok := c.Get(collectionKey); ok {
		if coll, ok := v.(store.Collection); ok {
			return coll, nil
		}
	}
	return nil, errNoCollection
}

// ListDocuments returns every document of the bound collection. A
// collection with no documents yields an empty array.
func (h *Handler) ListDocuments(c *gin.Context) {
	coll, err := boundCollection(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	docs, err := coll.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.Log.Debug().Str("collection", coll.Name()).Int("count", len(docs)).Msg("documents listed")
	c.JSON(http.StatusOK, docs)
}

// UpdateDocument merges the request body into the document with the given
// id. Only an update that matched exactly one document reports success.
func (h *Handler) UpdateDocument(c *gin.Context) {
	coll, err := boundCollection(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		_ = c.Error(errs.NewValidationError("Invalid document id"))
		return
	}

	fields, err := decodeDocument(c)
	if err != nil {
		_ = c.Error(errs.NewValidationError("Invalid request body"))
		return
	}
	delete(fields, "_id")

	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"msg": "error"})
		return
	}

	res, err := coll.UpdateByID(c.Request.Context(), id, fields)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if res.MatchedCount != 1 {
		c.JSON(http.StatusOK, gin.H{"msg": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "success"})
}

// decodeDocument reads a JSON object, keeping integers as int64 rather
// than float64.
func decodeDocument(c *gin.Context) (bson.M, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	fields := make(bson.M, len(doc))
	for k, v := range doc {
		fields[k] = normalizeNumbers(v)
	}
	return fields, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		m := make(bson.M, len(t))
		for k, e := range t {
			m[k] = normalizeNumbers(e)
		}
		return m
	case []any:
		a := make(bson.A, len(t))
		for i, e := range t {
			a[i] = normalizeNumbers(e)
		}
		return a
	default:
		return v
	}
}
