package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fibrewavelabs/fibrewave/internal/cache"
	"github.com/fibrewavelabs/fibrewave/internal/catalog/domain"
	"github.com/fibrewavelabs/fibrewave/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const priceCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository

	// Read-through cache for price lookups on the billing hot path.
	// Invalidated explicitly on every catalog write.
	prices *cache.TTLCache[string, *domain.PackagePrice]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("catalog.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		prices: cache.NewTTLCache[string, *domain.PackagePrice](),
	}
}

func priceKey(serviceType, pkg string) string {
	return strings.ToLower(strings.TrimSpace(serviceType)) + "|" + strings.ToLower(strings.TrimSpace(pkg))
}

func (s *Service) ResolvePrice(ctx context.Context, serviceType, pkg string) (*domain.PackagePrice, error) {
	key := priceKey(serviceType, pkg)
	if cached, ok := s.prices.Get(key); ok {
		return cached, nil
	}

	price, err := s.repo.FindByServiceAndPackage(ctx, s.db, strings.TrimSpace(serviceType), strings.TrimSpace(pkg))
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, domain.ErrPackagePriceNotFound
	}

	s.prices.Set(key, price, priceCacheTTL)
	return price, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreatePackagePriceRequest) (*domain.PackagePrice, error) {
	serviceType := strings.TrimSpace(req.ServiceType)
	pkg := strings.TrimSpace(req.Package)
	if serviceType == "" || pkg == "" || req.Price.IsNegative() {
		return nil, domain.ErrInvalidPackagePrice
	}

	existing, err := s.repo.FindByServiceAndPackage(ctx, s.db, serviceType, pkg)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicatePackage
	}

	now := s.clock.Now(ctx)
	price := &domain.PackagePrice{
		ID:          s.genID.Generate(),
		ServiceType: serviceType,
		Package:     pkg,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, price); err != nil {
		return nil, err
	}

	s.prices.Delete(priceKey(serviceType, pkg))
	s.log.Info("package price created",
		zap.String("service_type", serviceType),
		zap.String("package", pkg),
		zap.String("price", price.Price.String()),
	)
	return price, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdatePackagePriceRequest) (*domain.PackagePrice, error) {
	price, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, domain.ErrPackagePriceNotFound
	}

	if req.Description != nil {
		price.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domain.ErrInvalidPackagePrice
		}
		price.Price = *req.Price
	}
	price.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Update(ctx, s.db, price); err != nil {
		return nil, err
	}

	s.prices.Delete(priceKey(price.ServiceType, price.Package))
	return price, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	price, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if price == nil {
		return domain.ErrPackagePriceNotFound
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.prices.Delete(priceKey(price.ServiceType, price.Package))
	return nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.PackagePrice, error) {
	price, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if price == nil {
		return nil, domain.ErrPackagePriceNotFound
	}
	return price, nil
}

func (s *Service) List(ctx context.Context) ([]domain.PackagePrice, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) ListServiceTypes(ctx context.Context) ([]string, error) {
	return s.repo.ListServiceTypes(ctx, s.db)
}

func (s *Service) ListPackages(ctx context.Context, serviceType string) ([]domain.PackagePrice, error) {
	return s.repo.ListPackages(ctx, s.db, strings.TrimSpace(serviceType))
}
