package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product represents a catalog record keyed by its scanned code.
// The code is the business key used for lookups; the storage layer does not
// enforce uniqueness on it.
type Product struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`
	Code  string             `bson:"code" json:"code"`
	Price float64            `bson:"price" json:"price"`
}
