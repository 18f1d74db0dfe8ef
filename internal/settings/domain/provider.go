package domain

import "context"

// Provider exposes company settings to the rest of the system. Reads go
// through an in-process cache; writes invalidate it explicitly.
type Provider interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	All(ctx context.Context) (map[string]string, error)
	List(ctx context.Context) ([]CompanySetting, error)
	Set(ctx context.Context, key, value string) (*CompanySetting, error)
	Delete(ctx context.Context, key string) error
}
