package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespulse/salespulse/internal/model"
)

func txn(date string, quantity, revenue float64, product, city string) model.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		Date:      d,
		Quantity:  quantity,
		Revenue:   revenue,
		Product:   product,
		City:      city,
		PeriodKey: model.PeriodKeyFor(d),
	}
}

func fullSchema() model.Schema {
	return model.Schema{HasProduct: true, HasCity: true}
}

func TestAggregateScalars(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 3, 30, "A", "X"),
		txn("2024-01-20", 2, 20, "B", "Y"),
	}

	summary := Aggregate(transactions, fullSchema())

	assert.InDelta(t, 50.0, summary.TotalRevenue, 1e-9)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.InDelta(t, 25.0, summary.AvgOrderValue, 1e-9)
	assert.InDelta(t, 5.0, summary.TotalItemsSold, 1e-9)

	require.Len(t, summary.RevenueByPeriod, 1)
	assert.Equal(t, model.RevenueEntry{Key: "2024-01", Revenue: 50}, summary.RevenueByPeriod[0])

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, model.RevenueEntry{Key: "A", Revenue: 30}, summary.TopProducts[0])
	assert.Equal(t, model.RevenueEntry{Key: "B", Revenue: 20}, summary.TopProducts[1])
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil, fullSchema())

	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.TotalTransactions)
	assert.Zero(t, summary.AvgOrderValue) // no division by zero
	assert.Zero(t, summary.TotalItemsSold)
	assert.Empty(t, summary.TopProducts)
	assert.Empty(t, summary.TopCities)
	assert.Empty(t, summary.RevenueByPeriod)
}

func TestAggregateNoCrossContamination(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-01", 100, 1, "A", "X"),
		txn("2024-01-02", 200, 2, "A", "X"),
	}

	summary := Aggregate(transactions, fullSchema())
	assert.InDelta(t, 3.0, summary.TotalRevenue, 1e-9)
	assert.InDelta(t, 300.0, summary.TotalItemsSold, 1e-9)
}

func TestAggregateTopFiveTruncation(t *testing.T) {
	var transactions []model.Transaction
	products := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"}
	for i, p := range products {
		transactions = append(transactions, txn("2024-03-01", 1, float64(10*(i+1)), p, "X"))
	}

	summary := Aggregate(transactions, fullSchema())

	require.Len(t, summary.TopProducts, 5)
	assert.Equal(t, "P7", summary.TopProducts[0].Key)
	assert.Equal(t, "P3", summary.TopProducts[4].Key)
	for i := 1; i < len(summary.TopProducts); i++ {
		assert.GreaterOrEqual(t,
			summary.TopProducts[i-1].Revenue,
			summary.TopProducts[i].Revenue)
	}
}

func TestAggregateTiesKeepFirstSeenOrder(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-01", 1, 10, "Beta", "X"),
		txn("2024-01-02", 1, 10, "Alpha", "X"),
		txn("2024-01-03", 1, 10, "Gamma", "X"),
	}

	summary := Aggregate(transactions, fullSchema())

	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, "Beta", summary.TopProducts[0].Key)
	assert.Equal(t, "Alpha", summary.TopProducts[1].Key)
	assert.Equal(t, "Gamma", summary.TopProducts[2].Key)
}

func TestAggregateSchemaDisablesGroupings(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 3, 30, "", ""),
	}

	summary := Aggregate(transactions, model.Schema{})

	assert.Nil(t, summary.TopProducts)
	assert.Nil(t, summary.TopCities)
	require.Len(t, summary.RevenueByPeriod, 1)
}

func TestAggregateRevenueByPeriodChronological(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-12-01", 1, 10, "A", "X"),
		txn("2024-02-01", 1, 20, "A", "X"),
		txn("2023-11-15", 1, 30, "A", "X"),
		txn("2024-02-20", 1, 5, "A", "X"),
	}

	summary := Aggregate(transactions, fullSchema())

	require.Len(t, summary.RevenueByPeriod, 3)
	assert.Equal(t, "2023-11", summary.RevenueByPeriod[0].Key)
	assert.Equal(t, "2024-02", summary.RevenueByPeriod[1].Key)
	assert.Equal(t, "2024-12", summary.RevenueByPeriod[2].Key)
	assert.InDelta(t, 25.0, summary.RevenueByPeriod[1].Revenue, 1e-9)
}

func TestAggregateCityFilterEqualsManualSubset(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 3, 30, "A", "X"),
		txn("2024-01-20", 2, 20, "B", "Y"),
		txn("2024-02-05", 1, 15, "A", "X"),
	}

	filtered := Aggregate(transactions, fullSchema(), FilterCity("X"))

	var subset []model.Transaction
	for _, t := range transactions {
		if t.City == "X" {
			subset = append(subset, t)
		}
	}
	manual := Aggregate(subset, fullSchema())

	assert.Equal(t, manual, filtered)
	assert.Equal(t, 2, filtered.TotalTransactions)
	assert.InDelta(t, 45.0, filtered.TotalRevenue, 1e-9)
}

func TestAggregateFilterDoesNotMutateBase(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 3, 30, "A", "X"),
		txn("2024-01-20", 2, 20, "B", "Y"),
	}

	_ = Aggregate(transactions, fullSchema(), FilterCity("X"))

	assert.Len(t, transactions, 2)
	assert.Equal(t, "Y", transactions[1].City)
}

func TestApplyComposesFilters(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 3, 30, "A", "X"),
		txn("2024-02-20", 2, 20, "B", "X"),
		txn("2024-01-25", 1, 10, "C", "Y"),
	}

	got := Apply(transactions, FilterCity("X"), FilterPeriod("2024-01"))
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Product)
}

func TestCities(t *testing.T) {
	transactions := []model.Transaction{
		txn("2024-01-15", 1, 10, "A", "Porto"),
		txn("2024-01-16", 1, 10, "A", "Lisbon"),
		txn("2024-01-17", 1, 10, "A", "Porto"),
		txn("2024-01-18", 1, 10, "A", ""),
	}

	assert.Equal(t, []string{"Lisbon", "Porto"}, Cities(transactions))
	assert.Empty(t, Cities(nil))
}
