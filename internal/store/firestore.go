package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Ensure FirestoreStore implements Store
var _ Store = (*FirestoreStore)(nil)

// FirestoreStore keeps values as one document per key inside a per-scope
// subcollection. It backs sessions that must survive across devices.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	scope      string
}

// valueDoc is the Firestore document layout for a stored value.
type valueDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// NewFirestoreStore creates a Firestore-backed store. scope isolates
// installations sharing one collection.
func NewFirestoreStore(client *firestore.Client, collection, scope string) (*FirestoreStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if scope == "" {
		return nil, fmt.Errorf("scope is required")
	}

	return &FirestoreStore{
		client:     client,
		collection: collection,
		scope:      scope,
	}, nil
}

func (f *FirestoreStore) doc(key string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(f.scope).Collection("values").Doc(key)
}

func (f *FirestoreStore) Get(ctx context.Context, key string) (string, error) {
	snap, err := f.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("firestore get %s: %w", key, err)
	}

	var doc valueDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("firestore unmarshal %s: %w", key, err)
	}
	return doc.Value, nil
}

func (f *FirestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := f.doc(key).Set(ctx, valueDoc{Value: value, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("firestore set %s: %w", key, err)
	}
	return nil
}

func (f *FirestoreStore) Delete(ctx context.Context, key string) error {
	_, err := f.doc(key).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore delete %s: %w", key, err)
	}
	return nil
}
