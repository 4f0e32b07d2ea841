package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wallsetting-api/internal/models"
	"github.com/noah-isme/wallsetting-api/internal/repository"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type fakeBrandInfoRepo struct {
	brands    map[string]*models.BrandInfo
	listCalls int
	createErr error
}

func newFakeBrandInfoRepo(brands ...models.BrandInfo) *fakeBrandInfoRepo {
	repo := &fakeBrandInfoRepo{brands: map[string]*models.BrandInfo{}}
	for i := range brands {
		b := brands[i]
		repo.brands[b.ID] = &b
	}
	return repo
}

func (f *fakeBrandInfoRepo) List(ctx context.Context, filter models.BrandInfoFilter) ([]models.BrandInfo, int, error) {
	f.listCalls++
	var out []models.BrandInfo
	for _, b := range f.brands {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (f *fakeBrandInfoRepo) FindByID(ctx context.Context, id string) (*models.BrandInfo, error) {
	b, ok := f.brands[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBrandInfoRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for id, b := range f.brands {
		if b.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBrandInfoRepo) Create(ctx context.Context, brand *models.BrandInfo) error {
	if f.createErr != nil {
		return f.createErr
	}
	brand.ID = "new-id"
	f.brands[brand.ID] = brand
	return nil
}

func (f *fakeBrandInfoRepo) Update(ctx context.Context, brand *models.BrandInfo) error {
	if _, ok := f.brands[brand.ID]; !ok {
		return sql.ErrNoRows
	}
	f.brands[brand.ID] = brand
	return nil
}

func (f *fakeBrandInfoRepo) UpdateProfileImage(ctx context.Context, id string, path *string) error {
	b, ok := f.brands[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.ProfileImage = path
	return nil
}

func (f *fakeBrandInfoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.brands[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.brands, id)
	return nil
}

func validBrandRequest() BrandInfoRequest {
	return BrandInfoRequest{Name: "theclimb_yeonnam", Brand: "theclimb", NameKR: "더클라임 연남", WallNames: []string{"main", "side"}}
}

func TestBrandInfoServiceCreate(t *testing.T) {
	repo := newFakeBrandInfoRepo()
	svc := NewBrandInfoService(repo, nil, nil, nil)

	brand, err := svc.Create(context.Background(), validBrandRequest())
	require.NoError(t, err)
	assert.Equal(t, "new-id", brand.ID)
	assert.Equal(t, models.WallNames{"main", "side"}, brand.WallNames)
}

func TestBrandInfoServiceCreateConflict(t *testing.T) {
	repo := newFakeBrandInfoRepo(models.BrandInfo{ID: "b1", Name: "theclimb_yeonnam"})
	svc := NewBrandInfoService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), validBrandRequest())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestBrandInfoServiceCreateRaceConflict(t *testing.T) {
	repo := newFakeBrandInfoRepo()
	repo.createErr = repository.ErrDuplicateName
	svc := NewBrandInfoService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), validBrandRequest())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestBrandInfoServiceValidation(t *testing.T) {
	svc := NewBrandInfoService(newFakeBrandInfoRepo(), nil, nil, nil)

	req := validBrandRequest()
	req.NameKR = ""
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validBrandRequest()
	req.WallNames = []string{"main", "main"}
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validBrandRequest()
	req.WallNames = []string{""}
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBrandInfoServiceRejectsBlankNames(t *testing.T) {
	svc := NewBrandInfoService(newFakeBrandInfoRepo(), nil, nil, nil)

	for _, mutate := range []func(*BrandInfoRequest){
		func(r *BrandInfoRequest) { r.Name = "   " },
		func(r *BrandInfoRequest) { r.Brand = "\t" },
		func(r *BrandInfoRequest) { r.NameKR = " " },
		func(r *BrandInfoRequest) { r.WallNames = []string{"main", "  "} },
		func(r *BrandInfoRequest) { r.WallNames = []string{"main", " main "} },
	} {
		req := validBrandRequest()
		mutate(&req)
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, appErrors.ErrValidation)
	}
}

func TestBrandInfoServiceTrimsNames(t *testing.T) {
	repo := newFakeBrandInfoRepo()
	svc := NewBrandInfoService(repo, nil, nil, nil)

	req := validBrandRequest()
	req.Name = " theclimb_yeonnam "
	req.WallNames = []string{" main", "side "}
	brand, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "theclimb_yeonnam", repo.brands[brand.ID].Name)
	assert.Equal(t, models.WallNames{"main", "side"}, repo.brands[brand.ID].WallNames)
	assert.Equal(t, []string{" main", "side "}, req.WallNames)
}

func TestBrandInfoServiceUpdateAllowsSameName(t *testing.T) {
	repo := newFakeBrandInfoRepo(models.BrandInfo{ID: "b1", Name: "theclimb_yeonnam"})
	svc := NewBrandInfoService(repo, nil, nil, nil)

	req := validBrandRequest()
	req.WallNames = []string{"cave"}
	brand, err := svc.Update(context.Background(), "b1", req)
	require.NoError(t, err)
	assert.Equal(t, models.WallNames{"cave"}, brand.WallNames)

	_, err = svc.Update(context.Background(), "missing", req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBrandInfoServiceListUsesCacheAndInvalidates(t *testing.T) {
	repo := newFakeBrandInfoRepo(models.BrandInfo{ID: "b1", Name: "a", WallNames: models.WallNames{"main"}, CreatedAt: time.Now().UTC()})
	cache := NewCacheService(newMemoryCacheRepo(), nil, "brands_info", time.Minute, nil, true)
	svc := NewBrandInfoService(repo, cache, nil, nil)
	ctx := context.Background()

	items, pagination, hit, err := svc.List(ctx, models.BrandInfoFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	items, _, hit, err = svc.List(ctx, models.BrandInfoFilter{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, models.WallNames{"main"}, items[0].WallNames)
	assert.Equal(t, 1, repo.listCalls)

	require.NoError(t, svc.Delete(ctx, "b1"))
	items, _, hit, err = svc.List(ctx, models.BrandInfoFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, 2, repo.listCalls)
}

func TestBrandInfoServiceSetProfileImage(t *testing.T) {
	repo := newFakeBrandInfoRepo(models.BrandInfo{ID: "b1", Name: "a"})
	svc := NewBrandInfoService(repo, nil, nil, nil)

	require.NoError(t, svc.SetProfileImage(context.Background(), "b1", "/images/brands/b1/x.jpg"))
	require.NotNil(t, repo.brands["b1"].ProfileImage)
	assert.Equal(t, "/images/brands/b1/x.jpg", *repo.brands["b1"].ProfileImage)

	err := svc.SetProfileImage(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBrandInfoServiceDeleteMissing(t *testing.T) {
	svc := NewBrandInfoService(newFakeBrandInfoRepo(), nil, nil, nil)
	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), appErrors.ErrNotFound)
}
