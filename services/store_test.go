package services

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection satisfies Collection with canned responses. Unset hooks
// return benign defaults so each test only wires what it asserts on.
type fakeCollection struct {
	findOne   func(filter interface{}) *mongo.SingleResult
	find      func(filter interface{}) (*mongo.Cursor, error)
	insertOne func(document interface{}) (*mongo.InsertOneResult, error)
	updateOne func(filter, update interface{}) (*mongo.UpdateResult, error)
	deleteOne func(filter interface{}) (*mongo.DeleteResult, error)
	count     func(filter interface{}) (int64, error)
}

func singleResult(doc interface{}) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.findOne == nil {
		return mongo.NewSingleResultFromDocument(nil, mongo.ErrNoDocuments, nil)
	}
	return f.findOne(filter)
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	if f.find == nil {
		return nil, mongo.ErrNoDocuments
	}
	return f.find(filter)
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertOne == nil {
		return &mongo.InsertOneResult{}, nil
	}
	return f.insertOne(document)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	if f.updateOne == nil {
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}
	return f.updateOne(filter, update)
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	if f.deleteOne == nil {
		return &mongo.DeleteResult{DeletedCount: 1}, nil
	}
	return f.deleteOne(filter)
}

func (f *fakeCollection) CountDocuments(_ context.Context, filter interface{}, _ ...*options.CountOptions) (int64, error) {
	if f.count == nil {
		return 0, nil
	}
	return f.count(filter)
}
