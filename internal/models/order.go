package models

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/harentsoaR/lessons-api/internal/errs"
)

const (
	MsgCartItemsMissing  = "Cart items missing"
	MsgAddressIncomplete = "Address details incomplete"
)

// OrderFields are the top-level keys kept from a submitted order. Values
// are stored as sent: no totals are computed and no stock is reserved.
var OrderFields = []string{
	"firstName", "lastName", "address", "city", "state", "zip",
	"phoneNumber", "method", "gift", "items",
}

var orderAddressFields = []string{"firstName", "lastName", "address", "city", "state", "zip"}

// NewOrder checks a submitted order and returns the document to store.
// The cart is checked before the address so an empty cart is always
// reported as such. Keys the client left out are stored as null.
func NewOrder(submitted bson.M) (bson.M, error) {
	if !nonEmptyArray(submitted["items"]) {
		return nil, errs.NewValidationError(MsgCartItemsMissing)
	}
	for _, field := range orderAddressFields {
		if !present(submitted[field]) {
			return nil, errs.NewValidationError(MsgAddressIncomplete)
		}
	}

	order := make(bson.M, len(OrderFields))
	for _, field := range OrderFields {
		order[field] = submitted[field]
	}
	return order, nil
}

func nonEmptyArray(v any) bool {
	switch t := v.(type) {
	case bson.A:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

// present reports whether v counts as filled in: null, "", 0 and false do
// not.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int64:
		return t != 0
	case int32:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}
