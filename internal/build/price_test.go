package build

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RachedNaguez/PcBuilder/internal/model"
)

func TestTotalMixedPriceFormats(t *testing.T) {
	components := []model.Component{
		{Name: "GPU", Price: model.PriceFromString("$1,299.99")},
		{Name: "RAM", Price: model.PriceOf(49.5)},
		{Name: "PSU", Price: model.PriceFromString("invalid")},
		{Name: "Case", Price: model.PriceOf(0)},
	}

	assert.InDelta(t, 1349.49, Total(components), 0.0001)
}

func TestTotalEmptyList(t *testing.T) {
	assert.Equal(t, 0.0, Total(nil))
	assert.Equal(t, 0.0, Total([]model.Component{}))
}

func TestTotalRecomputedOnReplacement(t *testing.T) {
	first := Result([]model.Component{
		{Name: "CPU", Price: model.PriceOf(300)},
		{Name: "GPU", Price: model.PriceOf(500)},
	}, 0)
	assert.Equal(t, 800.0, first.TotalPrice)

	second := Result([]model.Component{
		{Name: "CPU", Price: model.PriceOf(150)},
	}, 0)
	assert.Equal(t, 150.0, second.TotalPrice)
}

func TestResultCarriesRequestedBudget(t *testing.T) {
	result := Result([]model.Component{{Name: "CPU", Price: model.PriceOf(100)}}, 1500)
	assert.Equal(t, 1500.0, result.RequestedBudget)
	assert.Equal(t, 100.0, result.TotalPrice)
}

func TestSummaryFormatsTwoDecimals(t *testing.T) {
	assert.Equal(t, "PC Build Total: $1349.49", Summary(1349.49))
	assert.Equal(t, "PC Build Total: $800.00", Summary(800))
}
