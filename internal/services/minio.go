package services

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"kle_back_end/internal/models"
)

// ImageResolver transforme la référence d'image stockée en URL consultable.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) string
}

// MinioImages signe les références qui désignent un objet du bucket.
// Les URLs absolues (http/https) sont renvoyées telles quelles.
type MinioImages struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinioImages(client *minio.Client, bucket string, expiry time.Duration) *MinioImages {
	return &MinioImages{client: client, bucket: bucket, expiry: expiry}
}

func (m *MinioImages) Resolve(ctx context.Context, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	key := strings.TrimPrefix(ref, "/")
	key = strings.TrimPrefix(key, m.bucket+"/")

	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, make(url.Values))
	if err != nil {
		log.Printf("⚠️ Impossible de signer l'image %s: %v", ref, err)
		return ref
	}
	return presignedURL.String()
}

func resolveImages(ctx context.Context, images ImageResolver, products []models.Product) []models.Product {
	if images == nil {
		return products
	}
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.Image = images.Resolve(ctx, p.Image)
		out[i] = p
	}
	return out
}
