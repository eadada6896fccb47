package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/olist/olap-engine/internal/infrastructure/persistence/models"
)

// GormWarehouseRepository persists the star schema using GORM.
type GormWarehouseRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository.
// chunkSize bounds the rows per INSERT during loading.
func NewGormWarehouseRepository(db *gorm.DB, chunkSize int) *GormWarehouseRepository {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &GormWarehouseRepository{db: db, chunkSize: chunkSize}
}

// UpsertDateDims inserts date dimension rows, ignoring dates already
// present. Calendar attributes of a date never change.
func (r *GormWarehouseRepository) UpsertDateDims(ctx context.Context, dims []warehouse.DateDim) error {
	if len(dims) == 0 {
		return nil
	}
	rows := make([]models.DateDimModel, len(dims))
	for i, d := range dims {
		rows[i] = models.DateDimModelFromDomain(d)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, r.chunkSize).Error
}

// UpsertCustomerDims inserts or overwrites customer dimension rows.
// Derived attributes (region, city size) may change between runs.
func (r *GormWarehouseRepository) UpsertCustomerDims(ctx context.Context, dims []warehouse.CustomerDim) error {
	if len(dims) == 0 {
		return nil
	}
	rows := make([]models.CustomerDimModel, len(dims))
	for i, d := range dims {
		rows[i] = models.CustomerDimModelFromDomain(d)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, r.chunkSize).Error
}

// UpsertSellerDims inserts or overwrites seller dimension rows.
func (r *GormWarehouseRepository) UpsertSellerDims(ctx context.Context, dims []warehouse.SellerDim) error {
	if len(dims) == 0 {
		return nil
	}
	rows := make([]models.SellerDimModel, len(dims))
	for i, d := range dims {
		rows[i] = models.SellerDimModelFromDomain(d)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, r.chunkSize).Error
}

// UpsertProductDims inserts or overwrites product dimension rows.
// Binning categories depend on the transform batch and are overwritten
// on reload.
func (r *GormWarehouseRepository) UpsertProductDims(ctx context.Context, dims []warehouse.ProductDim) error {
	if len(dims) == 0 {
		return nil
	}
	rows := make([]models.ProductDimModel, len(dims))
	for i, d := range dims {
		rows[i] = models.ProductDimModelFromDomain(d)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, r.chunkSize).Error
}

// AppendSalesFacts appends fact rows in chunks and returns the number of
// rows actually loaded. On a mid-load failure the count reflects the
// chunks committed before the error.
func (r *GormWarehouseRepository) AppendSalesFacts(ctx context.Context, facts []warehouse.SalesFact) (int, error) {
	loaded := 0
	for start := 0; start < len(facts); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(facts) {
			end = len(facts)
		}
		chunk := make([]models.SalesFactModel, end-start)
		for i, f := range facts[start:end] {
			chunk[i] = models.SalesFactModelFromDomain(f)
		}
		if err := r.db.WithContext(ctx).Create(&chunk).Error; err != nil {
			return loaded, err
		}
		loaded += len(chunk)
	}
	return loaded, nil
}

// NextSaleID returns the next free fact surrogate key.
func (r *GormWarehouseRepository) NextSaleID(ctx context.Context) (int64, error) {
	var maxID int64
	err := r.db.WithContext(ctx).
		Model(&models.SalesFactModel{}).
		Select("COALESCE(MAX(sale_id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

// FindAllFacts loads every fact row ordered by sale ID.
func (r *GormWarehouseRepository) FindAllFacts(ctx context.Context) ([]warehouse.SalesFact, error) {
	var rows []models.SalesFactModel
	if err := r.db.WithContext(ctx).Order("sale_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	facts := make([]warehouse.SalesFact, len(rows))
	for i := range rows {
		facts[i] = rows[i].ToDomain()
	}
	return facts, nil
}

// FindFactsSorted loads a page of fact rows ordered by a whitelisted
// column. Unknown columns fall back to sale_id.
func (r *GormWarehouseRepository) FindFactsSorted(ctx context.Context, sortField, sortOrder string, limit, offset int) ([]warehouse.SalesFact, error) {
	field := ValidateSortField(sortField, FactSortFields, "sale_id")
	order := ValidateSortOrder(sortOrder)

	query := r.db.WithContext(ctx).Order(field + " " + order)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []models.SalesFactModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	facts := make([]warehouse.SalesFact, len(rows))
	for i := range rows {
		facts[i] = rows[i].ToDomain()
	}
	return facts, nil
}

// FindAllCustomerDims loads the customer dimension.
func (r *GormWarehouseRepository) FindAllCustomerDims(ctx context.Context) ([]warehouse.CustomerDim, error) {
	var rows []models.CustomerDimModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	dims := make([]warehouse.CustomerDim, len(rows))
	for i := range rows {
		dims[i] = rows[i].ToDomain()
	}
	return dims, nil
}

// FindAllSellerDims loads the seller dimension.
func (r *GormWarehouseRepository) FindAllSellerDims(ctx context.Context) ([]warehouse.SellerDim, error) {
	var rows []models.SellerDimModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	dims := make([]warehouse.SellerDim, len(rows))
	for i := range rows {
		dims[i] = rows[i].ToDomain()
	}
	return dims, nil
}

// FindAllProductDims loads the product dimension.
func (r *GormWarehouseRepository) FindAllProductDims(ctx context.Context) ([]warehouse.ProductDim, error) {
	var rows []models.ProductDimModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	dims := make([]warehouse.ProductDim, len(rows))
	for i := range rows {
		dims[i] = rows[i].ToDomain()
	}
	return dims, nil
}
