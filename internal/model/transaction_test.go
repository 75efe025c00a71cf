package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Validate(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		wantErr error
		name    string
		txn     Transaction
	}{
		{
			name: "valid expense",
			txn:  Transaction{Date: date, Vendor: "Netflix", Amount: -15.99, Type: TypeExpense},
		},
		{
			name: "type omitted",
			txn:  Transaction{Date: date, Vendor: "Employer", Amount: 4000},
		},
		{
			name:    "missing date",
			txn:     Transaction{Vendor: "Netflix", Amount: -15.99},
			wantErr: ErrMissingDate,
		},
		{
			name:    "blank vendor",
			txn:     Transaction{Date: date, Vendor: "  ", Amount: -15.99},
			wantErr: ErrMissingVendor,
		},
		{
			name:    "type disagrees with sign",
			txn:     Transaction{Date: date, Vendor: "Netflix", Amount: -15.99, Type: TypeIncome},
			wantErr: ErrTypeSignMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransaction_Sign(t *testing.T) {
	expense := Transaction{Amount: -20}
	assert.True(t, expense.IsExpense())
	assert.False(t, expense.IsIncome())
	assert.InDelta(t, 20.0, expense.AbsAmount(), 1e-9)
	assert.Equal(t, TypeExpense, TypeFromAmount(-0.01))
	assert.Equal(t, TypeIncome, TypeFromAmount(0))
}

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		OwnerID: 1,
		Date:    time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		Vendor:  "Netflix",
		Amount:  -15.99,
	}
	sameDay := base
	sameDay.Date = time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)
	otherOwner := base
	otherOwner.OwnerID = 2

	assert.Equal(t, base.GenerateHash(), sameDay.GenerateHash())
	assert.NotEqual(t, base.GenerateHash(), otherOwner.GenerateHash())
	assert.Len(t, base.GenerateHash(), 64)
}

func TestNormalizeVendor(t *testing.T) {
	assert.Equal(t, "netflix inc", NormalizeVendor("  NETFLIX   Inc "))
	assert.Equal(t, "", NormalizeVendor("   "))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, r.Contains(r.Start))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, DateRange{}.Contains(time.Now()))
	assert.True(t, DateRange{}.IsZero())
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	r := LastNDays(now, 30)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), r.End)
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		want    DateRange
		name    string
		start   string
		end     string
		days    int
		wantErr bool
	}{
		{
			name: "days only",
			days: 7,
			want: DateRange{Start: time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:  "both bounds",
			start: "2024-01-01",
			end:   "2024-03-31",
			want:  DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:  "start only runs through today",
			start: "2024-06-01",
			want:  DateRange{Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		},
		{name: "bad start", start: "06/01/2024", wantErr: true},
		{name: "bad end", start: "2024-06-01", end: "tomorrow", wantErr: true},
		{name: "end before start", start: "2024-06-10", end: "2024-06-01", wantErr: true},
		{name: "non-positive days", days: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindow(tt.start, tt.end, tt.days, now)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
