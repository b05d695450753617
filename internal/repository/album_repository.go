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

type AlbumRepository struct {
	collection *mongo.Collection
}

func NewAlbumRepository(db *mongo.Database) *AlbumRepository {
	return &AlbumRepository{
		collection: db.Collection("albums"),
	}
}

func (r *AlbumRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "albumId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "ownerId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "sharedUsers", Value: 1}},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create album indexes: %w", err)
	}
	return nil
}

func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) (*models.Album, error) {
	if album.SharedUsers == nil {
		album.SharedUsers = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// GetByID returns nil, nil when the album does not exist
func (r *AlbumRepository) GetByID(ctx context.Context, albumID string) (*models.Album, error) {
	var album models.Album
	err := r.collection.FindOne(ctx, bson.M{"albumId": albumID}).Decode(&album)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}

// ListVisible returns albums owned by userID or shared with email
func (r *AlbumRepository) ListVisible(ctx context.Context, userID, email string) ([]*models.Album, error) {
	or := bson.A{bson.M{"ownerId": userID}}
	if email != "" {
		or = append(or, bson.M{"sharedUsers": email})
	}

	cursor, err := r.collection.Find(ctx, bson.M{"$or": or})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	albums := []*models.Album{}
	if err := cursor.All(ctx, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (r *AlbumRepository) UpdateDescription(ctx context.Context, albumID, description string) (*models.Album, error) {
	return r.findAndUpdate(ctx, albumID, bson.M{
		"$set": bson.M{"description": description, "updatedAt": time.Now()},
	})
}

// AddSharedUser appends email once; concurrent calls all land
func (r *AlbumRepository) AddSharedUser(ctx context.Context, albumID, email string) (*models.Album, error) {
	return r.findAndUpdate(ctx, albumID, bson.M{
		"$addToSet": bson.M{"sharedUsers": email},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *AlbumRepository) Delete(ctx context.Context, albumID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"albumId": albumID})
	return err
}

func (r *AlbumRepository) findAndUpdate(ctx context.Context, albumID string, update bson.M) (*models.Album, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var album models.Album
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"albumId": albumID}, update, opts).Decode(&album)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &album, nil
}
