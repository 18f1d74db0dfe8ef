package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/catalog/repository"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PackagePrice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFixed(time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func seed(t *testing.T, svc domain.Service, serviceType, pkg string, price int64) *domain.PackagePrice {
	t.Helper()
	created, err := svc.Create(context.Background(), domain.CreatePackagePriceRequest{
		ServiceType: serviceType,
		Package:     pkg,
		Price:       decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return created
}

func TestResolvePrice(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	seed(t, svc, "Fibre", "100Mbps", 500)

	price, err := svc.ResolvePrice(ctx, "Fibre", "100Mbps")
	require.NoError(t, err)
	require.True(t, price.Price.Equal(decimal.NewFromInt(500)))

	_, err = svc.ResolvePrice(ctx, "Fibre", "10Gbps")
	require.ErrorIs(t, err, domain.ErrPackagePriceNotFound)
}

func TestResolvePriceSeesUpdates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := seed(t, svc, "Fibre", "100Mbps", 500)

	// Warm the read-through cache.
	_, err := svc.ResolvePrice(ctx, "Fibre", "100Mbps")
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(550)
	_, err = svc.Update(ctx, created.ID, domain.UpdatePackagePriceRequest{Price: &newPrice})
	require.NoError(t, err)

	price, err := svc.ResolvePrice(ctx, "Fibre", "100Mbps")
	require.NoError(t, err)
	require.True(t, price.Price.Equal(newPrice), "catalog writes invalidate the cached price")
}

func TestResolvePriceSeesDeletes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created := seed(t, svc, "Fibre", "100Mbps", 500)

	_, err := svc.ResolvePrice(ctx, "Fibre", "100Mbps")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.ResolvePrice(ctx, "Fibre", "100Mbps")
	require.ErrorIs(t, err, domain.ErrPackagePriceNotFound)
}

func TestCreatePackagePriceValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	seed(t, svc, "Fibre", "100Mbps", 500)

	_, err := svc.Create(ctx, domain.CreatePackagePriceRequest{
		ServiceType: "Fibre",
		Package:     "100Mbps",
		Price:       decimal.NewFromInt(600),
	})
	require.ErrorIs(t, err, domain.ErrDuplicatePackage)

	_, err = svc.Create(ctx, domain.CreatePackagePriceRequest{
		ServiceType: "Fibre",
		Package:     "200Mbps",
		Price:       decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidPackagePrice)

	_, err = svc.Create(ctx, domain.CreatePackagePriceRequest{
		ServiceType: " ",
		Package:     "200Mbps",
		Price:       decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, domain.ErrInvalidPackagePrice)
}

func TestListServiceTypesAndPackages(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	seed(t, svc, "Fibre", "100Mbps", 500)
	seed(t, svc, "Fibre", "200Mbps", 700)
	seed(t, svc, "LTE", "Uncapped", 350)

	types, err := svc.ListServiceTypes(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Fibre", "LTE"}, types)

	packages, err := svc.ListPackages(ctx, "Fibre")
	require.NoError(t, err)
	require.Len(t, packages, 2)
}
