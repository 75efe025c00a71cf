package subscription

import (
	"testing"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func charge(vendor string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		Date:     date,
		Vendor:   vendor,
		Category: "Subscriptions",
		Amount:   amount,
		Type:     model.TypeFromAmount(amount),
	}
}

// every returns n charges spaced gap days apart starting at base.
func every(vendor string, amount float64, gap, n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, charge(vendor, amount, base.AddDate(0, 0, i*gap)))
	}
	return out
}

func TestDetect_StrictThirtyDayCycle(t *testing.T) {
	txns := every("Netflix", -15.99, 30, 4)

	candidates := Detect(txns, nil)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "netflix", c.VendorKey)
	assert.Equal(t, "Netflix", c.DisplayName)
	assert.Equal(t, model.CycleMonthly, c.BillingCycle)
	assert.InDelta(t, 0.9, c.Confidence, 1e-9)
	assert.Equal(t, base.AddDate(0, 0, 90), c.LastSeen)
	assert.Equal(t, base.AddDate(0, 0, 120), c.PredictedNext)
	assert.Equal(t, 4, c.TransactionCount)
	assert.InDelta(t, 15.99, c.AverageAmount, 1e-9)
	assert.InDelta(t, 15.99, c.EstimatedMonthlyCost, 1e-9)
	assert.InDelta(t, 63.96, c.TotalSpent, 1e-9)
	assert.Equal(t, model.RegularityHigh, c.Pattern.Regularity)
	assert.InDelta(t, 30, c.Pattern.AvgDaysBetween, 1e-9)
	assert.InDelta(t, 0, c.Pattern.VarianceDays, 1e-9)
	assert.Equal(t, "Subscriptions", c.Category)
}

func TestDetect_SingleTransactionIsIgnored(t *testing.T) {
	assert.Empty(t, Detect(every("Hulu", -7.99, 30, 1), nil))
}

func TestDetect_SameDayPairIsIgnored(t *testing.T) {
	txns := []model.Transaction{
		charge("Gym", -40, base),
		charge("Gym", -40, base.Add(3*time.Hour)),
	}
	assert.Empty(t, Detect(txns, nil))
}

func TestDetect_IncomeIsIgnored(t *testing.T) {
	assert.Empty(t, Detect(every("Employer", 2500, 14, 6), nil))
}

func TestDetect_Classification(t *testing.T) {
	tests := []struct {
		name       string
		txns       []model.Transaction
		wantCycle  model.BillingCycle
		wantConf   float64
		wantMonth  float64
		wantRegLbl model.Regularity
		wantNone   bool
	}{
		{
			name:       "forty day cycle is a loose monthly",
			txns:       every("Box", -30, 40, 3),
			wantCycle:  model.CycleMonthly,
			wantConf:   0.7,
			wantMonth:  30,
			wantRegLbl: model.RegularityHigh,
		},
		{
			name:       "yearly renewal",
			txns:       every("Domain", -120, 365, 2),
			wantCycle:  model.CycleYearly,
			wantConf:   0.8,
			wantMonth:  10,
			wantRegLbl: model.RegularityHigh,
		},
		{
			name: "irregular with three charges",
			txns: []model.Transaction{
				charge("Cafe", -5, base),
				charge("Cafe", -5, base.AddDate(0, 0, 2)),
				charge("Cafe", -5, base.AddDate(0, 0, 40)),
			},
			wantCycle:  model.CycleIrregular,
			wantConf:   0.5,
			wantMonth:  5,
			wantRegLbl: model.RegularityMedium,
		},
		{
			name: "two close charges read as monthly",
			txns: []model.Transaction{
				charge("Cafe", -5, base),
				charge("Cafe", -5, base.AddDate(0, 0, 2)),
			},
			// a single gap is always regular
			wantCycle:  model.CycleMonthly,
			wantConf:   0.9,
			wantMonth:  5,
			wantRegLbl: model.RegularityHigh,
		},
		{
			name:     "regular beyond four hundred days is dropped",
			txns:     every("Rare", -99, 500, 3),
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := Detect(tt.txns, nil)
			if tt.wantNone {
				assert.Empty(t, candidates)
				return
			}
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.wantCycle, candidates[0].BillingCycle)
			assert.InDelta(t, tt.wantConf, candidates[0].Confidence, 1e-9)
			assert.InDelta(t, tt.wantMonth, candidates[0].EstimatedMonthlyCost, 1e-9)
			assert.Equal(t, tt.wantRegLbl, candidates[0].Pattern.Regularity)
		})
	}
}

func TestIsRegular_Boundary(t *testing.T) {
	assert.True(t, IsRegular([]float64{24, 36}, 30), "deviation of 6 days is regular")
	assert.False(t, IsRegular([]float64{23, 37}, 30), "deviation of exactly 7 days is not regular")
}

func TestClassify_ConfidenceFloor(t *testing.T) {
	_, _, ok := Classify(false, 30, 2)
	assert.False(t, ok)

	cycle, conf, ok := Classify(true, 35, 2)
	assert.True(t, ok)
	assert.Equal(t, model.CycleMonthly, cycle)
	assert.InDelta(t, 0.9, conf, 1e-9)
}

func TestDetect_OrderingAndSession(t *testing.T) {
	var txns []model.Transaction
	txns = append(txns, every("Zeta Cloud", -5, 30, 3)...)
	txns = append(txns, every("Alpha Music", -10, 30, 3)...)
	txns = append(txns, every("Domain", -12, 365, 2)...)
	txns = append(txns, every("Gym", -50, 40, 3)...)

	candidates := Detect(txns, nil)
	require.Len(t, candidates, 4)

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.VendorKey
	}
	assert.Equal(t, []string{"alpha music", "zeta cloud", "domain", "gym"}, keys)

	session := NewSession("ALPHA  MUSIC")
	session.Confirm("Gym")
	filtered := Detect(txns, session)
	require.Len(t, filtered, 2)
	assert.Equal(t, "zeta cloud", filtered[0].VendorKey)
	assert.Equal(t, "domain", filtered[1].VendorKey)
}

func TestDetect_Idempotent(t *testing.T) {
	var txns []model.Transaction
	txns = append(txns, every("Netflix", -15.99, 30, 6)...)
	txns = append(txns, every("Spotify", -9.99, 31, 6)...)
	txns = append(txns, every("Annual", -99, 365, 3)...)

	first := Detect(txns, nil)
	second := Detect(txns, nil)
	assert.Equal(t, first, second)
}

func TestDetect_DisplayNameAndCategoryFromHistory(t *testing.T) {
	txns := []model.Transaction{
		{Date: base, Vendor: "NETFLIX.COM", Category: "Entertainment", Amount: -15},
		{Date: base.AddDate(0, 0, 30), Vendor: "netflix.com", Category: "Streaming", Amount: -15},
		{Date: base.AddDate(0, 0, 60), Vendor: "Netflix.com", Category: "Streaming", Amount: -15},
	}

	candidates := Detect(txns, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Netflix.com", candidates[0].DisplayName)
	assert.Equal(t, "Streaming", candidates[0].Category)
}

func TestDetect_RoundsPredictedGap(t *testing.T) {
	txns := []model.Transaction{
		charge("Water", -20, base),
		charge("Water", -20, base.AddDate(0, 0, 30)),
		charge("Water", -20, base.AddDate(0, 0, 61)),
	}

	candidates := Detect(txns, nil)
	require.Len(t, candidates, 1)
	// average gap of 30.5 days rounds to 31
	assert.Equal(t, base.AddDate(0, 0, 92), candidates[0].PredictedNext)
	assert.InDelta(t, 0.25, candidates[0].Pattern.VarianceDays, 1e-9)
}
