// Package assets resolves the opaque references a client needs to render a
// plant stage or play a sound.
package assets

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Sound names.
const (
	SoundCorrect = "correct"
	SoundLevelUp = "levelup"
)

// Resolver maps plant stages and sounds to URLs.
type Resolver interface {
	StageImage(ctx context.Context, plant string, stage int) (string, error)
	Sound(ctx context.Context, name string) (string, error)
}

// stageObject is the object path of a stage image. Stage indexes are zero based,
// image files are numbered from 1.
func stageObject(plant string, stage int) string {
	return fmt.Sprintf("plants/%s/%d.svg", plant, stage+1)
}

func soundObject(name string) string {
	return fmt.Sprintf("sounds/%s.mp3", name)
}

// StaticResolver serves assets from a path prefix on the web host.
type StaticResolver struct {
	base string
}

// NewStaticResolver returns a resolver rooted at base ("" for the site root).
func NewStaticResolver(base string) *StaticResolver {
	return &StaticResolver{base: base}
}

func (r *StaticResolver) StageImage(_ context.Context, plant string, stage int) (string, error) {
	return r.base + "/" + stageObject(plant, stage), nil
}

func (r *StaticResolver) Sound(_ context.Context, name string) (string, error) {
	return r.base + "/" + soundObject(name), nil
}

// BucketResolver hands out V4 signed GET URLs for objects in a Cloud Storage bucket.
type BucketResolver struct {
	client     *storage.Client
	bucketName string
	ttl        time.Duration
	now        func() time.Time
}

// NewBucketResolver creates a storage client with opts. URLs expire after ttl.
func NewBucketResolver(ctx context.Context, bucketName string, ttl time.Duration, opts ...option.ClientOption) (*BucketResolver, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BucketResolver{client: client, bucketName: bucketName, ttl: ttl, now: time.Now}, nil
}

func (r *BucketResolver) StageImage(ctx context.Context, plant string, stage int) (string, error) {
	return r.signedURL(ctx, stageObject(plant, stage))
}

func (r *BucketResolver) Sound(ctx context.Context, name string) (string, error) {
	return r.signedURL(ctx, soundObject(name))
}

func (r *BucketResolver) signedURL(_ context.Context, objectPath string) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: r.now().Add(r.ttl),
	}
	url, err := r.client.Bucket(r.bucketName).SignedURL(objectPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL for %s: %w", objectPath, err)
	}
	return url, nil
}

// Close releases the storage client.
func (r *BucketResolver) Close() error {
	return r.client.Close()
}
