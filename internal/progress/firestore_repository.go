package progress

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID)
}

func (r *firestoreRepository) GetDocument(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, ErrMissingUserID
	}
	snap, err := r.doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := snap.DataTo(&doc); err != nil {
		return Document{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	return doc, nil
}

func (r *firestoreRepository) SetDocument(ctx context.Context, userID string, doc Document) error {
	if userID == "" {
		return ErrMissingUserID
	}
	_, err := r.doc(userID).Set(ctx, doc)
	return err
}

func (r *firestoreRepository) UpdateDocument(ctx context.Context, userID string, doc Document) error {
	if userID == "" {
		return ErrMissingUserID
	}
	_, err := r.doc(userID).Update(ctx, doc.updates())
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}
