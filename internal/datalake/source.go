// Package datalake reads bank transactions that a loader has already
// ingested into a MongoDB collection.
package datalake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/stats"
)

const (
	// DefaultDatabase is the database the loader writes to.
	DefaultDatabase = "datalake"
	// DefaultCollection holds transactions from every data source.
	DefaultCollection = "transactions"
)

// Posting dates are stored as the bank exported them.
var postingLayouts = []string{"01/02/2006", model.DateLayout, time.RFC3339}

// Document is a transaction row as stored in the datalake.
type Document struct {
	Details        string             `bson:"Details"`
	PostingDate    string             `bson:"PostingDate"`
	Description    string             `bson:"Description"`
	Category       string             `bson:"category"`
	Type           string             `bson:"Type"`
	CheckOrSlipNum string             `bson:"CheckOrSlipNum"`
	DataSource     string             `bson:"dataSource"`
	AccountID      string             `bson:"accountID"`
	Amount         float64            `bson:"Amount"`
	Balance        float64            `bson:"Balance"`
	ID             primitive.ObjectID `bson:"_id,omitempty"`
}

// Finder is the read side of a Mongo collection.
type Finder interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Source implements service.TransactionSource over a datalake collection.
type Source struct {
	finder  Finder
	logger  *slog.Logger
	filter  bson.M
	ownerID int64
}

// NewSource reads from finder on behalf of ownerID. dataSource, when set,
// restricts the import to one loader data source.
func NewSource(finder Finder, ownerID int64, dataSource string) *Source {
	filter := bson.M{}
	if dataSource != "" {
		filter["dataSource"] = dataSource
	}
	return &Source{
		finder:  finder,
		ownerID: ownerID,
		filter:  filter,
		logger:  slog.Default().With("component", "datalake"),
	}
}

// Connect opens a client against uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: datalake uri is required", common.ErrMissingConfig)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Debug("Connected to datalake")
	return client, nil
}

// Name implements service.TransactionSource.
func (s *Source) Name() string { return "datalake" }

// Fetch implements service.TransactionSource. Posting dates are not stored
// in a sortable form, so the range is applied after decoding.
func (s *Source) Fetch(ctx context.Context, r model.DateRange) ([]model.Transaction, error) {
	cursor, err := s.finder.Find(ctx, s.filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query datalake: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode datalake documents: %w", err)
	}

	txns := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		tx, err := doc.ToTransaction(s.ownerID)
		if err != nil {
			s.logger.Warn("Skipping datalake document", "id", doc.ID.Hex(), "error", err)
			continue
		}
		txns = append(txns, tx)
	}

	txns = stats.Within(txns, r)
	s.logger.Info("Read datalake transactions", "documents", len(docs), "transactions", len(txns))
	return txns, nil
}

// ToTransaction maps a document onto the transaction model. Amounts are
// already signed the way the bank exported them.
func (d Document) ToTransaction(ownerID int64) (model.Transaction, error) {
	date, err := parsePostingDate(d.PostingDate)
	if err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		OwnerID:     ownerID,
		Date:        date,
		Vendor:      strings.Join(strings.Fields(d.Description), " "),
		Description: strings.TrimSpace(d.Details),
		Amount:      d.Amount,
		Category:    strings.TrimSpace(d.Category),
		Type:        model.TypeFromAmount(d.Amount),
		Source:      model.SourceDatalake,
	}
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}

	tx.Hash = tx.GenerateHash()
	if d.ID.IsZero() {
		tx.ID = "datalake-" + tx.Hash[:16]
	} else {
		tx.ID = "datalake-" + d.ID.Hex()
	}
	return tx, nil
}

func parsePostingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range postingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized posting date %q", s)
}
