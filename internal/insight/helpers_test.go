package insight

import (
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expense(vendor, category string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		Date:     date,
		Vendor:   vendor,
		Category: category,
		Amount:   -amount,
		Type:     model.TypeExpense,
	}
}

func income(amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		Date:     date,
		Vendor:   "Employer",
		Category: "Salary",
		Amount:   amount,
		Type:     model.TypeIncome,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
