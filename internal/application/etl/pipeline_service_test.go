package etl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/olist/olap-engine/internal/infrastructure/config"
)

// fakeWarehouseRepo records loaded rows in memory.
type fakeWarehouseRepo struct {
	dateDims     []warehouse.DateDim
	customerDims []warehouse.CustomerDim
	sellerDims   []warehouse.SellerDim
	productDims  []warehouse.ProductDim
	facts        []warehouse.SalesFact
	nextSaleID   int64

	failFactsAfter int // chunk-like failure point; 0 disables
	factsErr       error
}

func (r *fakeWarehouseRepo) UpsertDateDims(_ context.Context, dims []warehouse.DateDim) error {
	r.dateDims = append(r.dateDims, dims...)
	return nil
}

func (r *fakeWarehouseRepo) UpsertCustomerDims(_ context.Context, dims []warehouse.CustomerDim) error {
	r.customerDims = append(r.customerDims, dims...)
	return nil
}

func (r *fakeWarehouseRepo) UpsertSellerDims(_ context.Context, dims []warehouse.SellerDim) error {
	r.sellerDims = append(r.sellerDims, dims...)
	return nil
}

func (r *fakeWarehouseRepo) UpsertProductDims(_ context.Context, dims []warehouse.ProductDim) error {
	r.productDims = append(r.productDims, dims...)
	return nil
}

func (r *fakeWarehouseRepo) AppendSalesFacts(_ context.Context, facts []warehouse.SalesFact) (int, error) {
	if r.factsErr != nil {
		loaded := r.failFactsAfter
		if loaded > len(facts) {
			loaded = len(facts)
		}
		r.facts = append(r.facts, facts[:loaded]...)
		return loaded, r.factsErr
	}
	r.facts = append(r.facts, facts...)
	return len(facts), nil
}

func (r *fakeWarehouseRepo) NextSaleID(_ context.Context) (int64, error) {
	if r.nextSaleID == 0 {
		return 1, nil
	}
	return r.nextSaleID, nil
}

func testSources() SourceReaders {
	customers := `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
c1,u1,01310,sao paulo,SP
c2,u2,20040,rio de janeiro,RJ
`
	orders := `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2024-05-01 10:00:00,2024-05-05 10:00:00,2024-05-07
o2,c2,shipped,2024-05-02 09:00:00,,2024-05-12
`
	items := `order_id,order_item_id,product_id,seller_id,price,freight_value
o1,1,p1,s1,100.00,10.00
o1,2,p2,s1,50.00,5.00
o2,1,p1,s2,100.00,20.00
`
	products := `product_id,product_category_name,product_weight_g,product_length_cm,product_height_cm,product_width_cm
p1,audio,250,20,5,15
p2,books,1200,40,10,30
`
	sellers := `seller_id,seller_zip_code_prefix,seller_city,seller_state
s1,04536,sao paulo,SP
s2,80010,curitiba,PR
`
	return SourceReaders{
		Customers:  strings.NewReader(customers),
		Orders:     strings.NewReader(orders),
		OrderItems: strings.NewReader(items),
		Products:   strings.NewReader(products),
		Sellers:    strings.NewReader(sellers),
	}
}

func testTransformConfig() config.TransformConfig {
	return config.TransformConfig{
		ChunkSize:    100,
		JoinMode:     warehouse.JoinModeLenient,
		QuantileMode: warehouse.QuantileModeBatch,
		CitySizes:    map[string]string{"sao paulo": "Large"},
		StateRegions: map[string]string{"SP": "Southeast", "RJ": "Southeast", "PR": "South"},
	}
}

func TestPipelineService_Run(t *testing.T) {
	repo := &fakeWarehouseRepo{}
	svc := NewPipelineService(repo, testTransformConfig(), nil)

	report, err := svc.Run(context.Background(), testSources())
	require.NoError(t, err)

	assert.Equal(t, 2, report.DateDims)
	assert.Equal(t, 2, report.CustomerDims)
	assert.Equal(t, 2, report.SellerDims)
	assert.Equal(t, 2, report.ProductDims)
	assert.Equal(t, 3, report.FactsLoaded)
	assert.Equal(t, 3, report.Transform.FactRows)
	assert.Equal(t, 1, report.Transform.Undelivered)

	require.Len(t, repo.facts, 3)
	assert.Equal(t, int64(1), repo.facts[0].SaleID)

	// Geo attributes flow from configuration into the dimensions.
	assert.Equal(t, "Southeast", repo.customerDims[0].Region)
	assert.Equal(t, "Large", repo.customerDims[0].CitySize)
	assert.Equal(t, "South", repo.sellerDims[1].Region)
}

func TestPipelineService_Run_FactKeysContinueFromHighWaterMark(t *testing.T) {
	repo := &fakeWarehouseRepo{nextSaleID: 101}
	svc := NewPipelineService(repo, testTransformConfig(), nil)

	_, err := svc.Run(context.Background(), testSources())
	require.NoError(t, err)

	require.Len(t, repo.facts, 3)
	assert.Equal(t, int64(101), repo.facts[0].SaleID)
	assert.Equal(t, int64(103), repo.facts[2].SaleID)
}

func TestPipelineService_Run_PartialLoad(t *testing.T) {
	repo := &fakeWarehouseRepo{failFactsAfter: 2, factsErr: errors.New("connection reset")}
	svc := NewPipelineService(repo, testTransformConfig(), nil)

	_, err := svc.Run(context.Background(), testSources())
	require.Error(t, err)

	var perr *PartialLoadError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "fact_sales", perr.Table)
	assert.Equal(t, 2, perr.RowsLoaded)
	assert.ErrorContains(t, perr, "connection reset")
}

func TestPipelineService_Run_StrictModeFailsOnOrphans(t *testing.T) {
	cfg := testTransformConfig()
	cfg.JoinMode = warehouse.JoinModeStrict

	src := testSources()
	src.OrderItems = strings.NewReader(`order_id,order_item_id,product_id,seller_id,price,freight_value
o1,1,p1,s1,100.00,10.00
o-unknown,1,p2,s2,50.00,5.00
`)

	svc := NewPipelineService(&fakeWarehouseRepo{}, cfg, nil)
	_, err := svc.Run(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, warehouse.ErrOrphanRows)
}

func TestPipelineService_Run_ExtractErrorPropagates(t *testing.T) {
	src := testSources()
	src.Orders = strings.NewReader("order_id,customer_id\no1,c1\n")

	svc := NewPipelineService(&fakeWarehouseRepo{}, testTransformConfig(), nil)
	_, err := svc.Run(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, warehouse.ErrMissingColumn)
}

func TestPipelineService_Run_FixedBinningRequiresBreaks(t *testing.T) {
	cfg := testTransformConfig()
	cfg.QuantileMode = warehouse.QuantileModeFixed
	cfg.FixedVolumeBreaks = nil
	cfg.FixedWeightBreaks = nil

	svc := NewPipelineService(&fakeWarehouseRepo{}, cfg, nil)
	_, err := svc.Run(context.Background(), testSources())
	require.Error(t, err)
}
