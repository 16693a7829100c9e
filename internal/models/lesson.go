package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Lesson documents the usual shape of the lessons collection. Reads go
// through the generic routes as raw documents, so nothing here is enforced.
type Lesson struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	Location           string             `bson:"location" json:"location"`
	Price              float64            `bson:"price" json:"price"`
	AvailableInventory int                `bson:"availableInventory" json:"availableInventory"`
	Image              string             `bson:"image,omitempty" json:"image,omitempty"`
}

// LessonSearchFields are matched by the keyword search.
var LessonSearchFields = []string{"title", "description", "location", "price", "availableInventory"}
