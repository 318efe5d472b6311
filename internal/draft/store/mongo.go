package store

import (
	"context"
	"fmt"

	"github.com/bistroplan/bistroplan/internal/draft"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists drafts in MongoDB. Drafts live in one collection keyed
// by (userId, appId, draft id); the listing index lives in a second
// collection with one document per (userId, appId).
type MongoStore struct {
	drafts  *mongo.Collection
	indexes *mongo.Collection
}

type indexDoc struct {
	UserID string          `bson:"userId"`
	AppID  string          `bson:"appId"`
	Index  []draft.Summary `bson:"index"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	drafts := db.Collection("drafts")
	indexes := db.Collection("draft_indexes")
	// unique compound index for upsert-by-id lookups
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "appId", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	drafts.Indexes().CreateOne(context.Background(), idx)
	return &MongoStore{drafts: drafts, indexes: indexes}
}

func (s *MongoStore) LoadDrafts(ctx context.Context, userID, appID string) ([]*draft.Draft, error) {
	cur, err := s.drafts.Find(ctx, bson.M{"userId": userID, "appId": appID})
	if err != nil {
		return nil, fmt.Errorf("mongo find drafts: %w", err)
	}
	defer cur.Close(ctx)
	out := []*draft.Draft{}
	for cur.Next(ctx) {
		var rec struct {
			Draft draft.Draft `bson:"draft"`
		}
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("mongo decode draft: %w", err)
		}
		d := rec.Draft
		out = append(out, &d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return out, nil
}

func (s *MongoStore) SaveDraft(ctx context.Context, userID, appID string, d *draft.Draft) error {
	filter := bson.M{"userId": userID, "appId": appID, "id": d.ID}
	update := bson.M{"$set": bson.M{"draft": d}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.drafts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("mongo upsert draft %s: %w", d.ID, err)
	}
	return nil
}

func (s *MongoStore) DeleteDraft(ctx context.Context, userID, appID, draftID string) error {
	res, err := s.drafts.DeleteOne(ctx, bson.M{"userId": userID, "appId": appID, "id": draftID})
	if err != nil {
		return fmt.Errorf("mongo delete draft %s: %w", draftID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SaveDraftsIndex(ctx context.Context, userID, appID string, index []draft.Summary) error {
	filter := bson.M{"userId": userID, "appId": appID}
	update := bson.M{"$set": indexDoc{UserID: userID, AppID: appID, Index: index}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.indexes.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("mongo upsert drafts index: %w", err)
	}
	return nil
}

func (s *MongoStore) LoadDraftsIndex(ctx context.Context, userID, appID string) ([]draft.Summary, error) {
	var doc indexDoc
	err := s.indexes.FindOne(ctx, bson.M{"userId": userID, "appId": appID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return []draft.Summary{}, nil
		}
		return nil, fmt.Errorf("mongo load drafts index: %w", err)
	}
	return doc.Index, nil
}
