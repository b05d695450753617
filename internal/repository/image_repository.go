package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"album-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// notPending hides images whose delete is in flight
var notPending = bson.M{"$ne": true}

type ImageRepository struct {
	collection *mongo.Collection
}

func NewImageRepository(db *mongo.Database) *ImageRepository {
	return &ImageRepository{
		collection: db.Collection("images"),
	}
}

func (r *ImageRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "imageId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "albumId", Value: 1}, {Key: "uploadedAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "albumId", Value: 1}, {Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "pendingDelete", Value: 1}, {Key: "deleteRequestedAt", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create image indexes: %w", err)
	}
	return nil
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	if image.Tags == nil {
		image.Tags = []string{}
	}
	if image.Comments == nil {
		image.Comments = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}

// GetByID returns a visible image of the album, or nil, nil
func (r *ImageRepository) GetByID(ctx context.Context, albumID, imageID string) (*models.Image, error) {
	return r.findOne(ctx, bson.M{"imageId": imageID, "albumId": albumID, "pendingDelete": notPending})
}

// FindByID returns the image whether or not a delete is pending
func (r *ImageRepository) FindByID(ctx context.Context, imageID string) (*models.Image, error) {
	return r.findOne(ctx, bson.M{"imageId": imageID})
}

func (r *ImageRepository) ListByAlbum(ctx context.Context, albumID string) ([]*models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID, "pendingDelete": notPending})
}

func (r *ImageRepository) ListFavorites(ctx context.Context, albumID string) ([]*models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID, "isFavorite": true, "pendingDelete": notPending})
}

// SearchByTags matches images carrying any of tags
func (r *ImageRepository) SearchByTags(ctx context.Context, albumID string, tags []string) ([]*models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID, "tags": bson.M{"$in": tags}, "pendingDelete": notPending})
}

func (r *ImageRepository) SetFavorite(ctx context.Context, albumID, imageID string, isFavorite bool) (*models.Image, error) {
	return r.findAndUpdate(ctx, albumID, imageID, bson.M{"$set": bson.M{"isFavorite": isFavorite}})
}

func (r *ImageRepository) AddComment(ctx context.Context, albumID, imageID, comment string) (*models.Image, error) {
	return r.findAndUpdate(ctx, albumID, imageID, bson.M{"$push": bson.M{"comments": comment}})
}

// MarkPendingDelete hides the image and reports whether this call claimed it
func (r *ImageRepository) MarkPendingDelete(ctx context.Context, imageID string, at time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"imageId": imageID, "pendingDelete": notPending},
		bson.M{"$set": bson.M{"pendingDelete": true, "deleteRequestedAt": at}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *ImageRepository) ClearPendingDelete(ctx context.Context, imageID string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"imageId": imageID},
		bson.M{
			"$set":   bson.M{"pendingDelete": false},
			"$unset": bson.M{"deleteRequestedAt": ""},
		},
	)
	return err
}

func (r *ImageRepository) Delete(ctx context.Context, imageID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"imageId": imageID})
	return err
}

// ListPendingDelete returns images whose delete was requested at or before olderThan
func (r *ImageRepository) ListPendingDelete(ctx context.Context, olderThan time.Time) ([]*models.Image, error) {
	return r.find(ctx, bson.M{"pendingDelete": true, "deleteRequestedAt": bson.M{"$lte": olderThan}})
}

func (r *ImageRepository) find(ctx context.Context, filter bson.M) ([]*models.Image, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	images := []*models.Image{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *ImageRepository) findOne(ctx context.Context, filter bson.M) (*models.Image, error) {
	var image models.Image
	err := r.collection.FindOne(ctx, filter).Decode(&image)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *ImageRepository) findAndUpdate(ctx context.Context, albumID, imageID string, update bson.M) (*models.Image, error) {
	filter := bson.M{"imageId": imageID, "albumId": albumID, "pendingDelete": notPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var image models.Image
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&image)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}
