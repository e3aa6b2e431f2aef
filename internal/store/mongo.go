package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig defines the MongoDB connection settings.
type MongoConfig struct {
	URI      string        // e.g. "mongodb://localhost:27017"
	Database string
	Timeout  time.Duration // connect timeout, 10s when zero
}

// MongoStore implements the Store interface using MongoDB
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MongoDB URI cannot be empty")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(cfg.Database)}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the account and date indexes the queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	byDate := []mongo.IndexModel{{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "date", Value: 1}}}}
	for _, name := range []string{colRevenue, colInvoices, colCash} {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, byDate); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	indexes := map[string]bson.D{
		colPnL:      {{Key: "account_id", Value: 1}, {Key: "month", Value: 1}},
		colBalances: {{Key: "account_id", Value: 1}, {Key: "as_of", Value: -1}},
		colProfiles: {{Key: "account_id", Value: 1}},
		colSpikes:   {{Key: "account_id", Value: 1}, {Key: "month", Value: 1}},
	}
	for name, keys := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) findRecords(ctx context.Context, collection, accountID string, start, end time.Time) ([]recordDoc, error) {
	filter := bson.M{
		"account_id": accountID,
		"date": bson.M{
			"$gte": start,
			"$lt":  dayAfter(end),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "record_id", Value: 1}})

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []recordDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return docs, nil
}

func decodeAll[T ledger.Entry](docs []recordDoc, decode func(recordDoc) (T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		item, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	sortRecords(out)
	return out, nil
}

// ListRevenue queries revenue lines dated within [start, end]
func (s *MongoStore) ListRevenue(ctx context.Context, accountID string, start, end time.Time) ([]ledger.RevenueLine, error) {
	docs, err := s.findRecords(ctx, colRevenue, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, recordDoc.revenue)
}

// ListInvoices queries invoices issued within [start, end]
func (s *MongoStore) ListInvoices(ctx context.Context, accountID string, start, end time.Time) ([]ledger.Invoice, error) {
	docs, err := s.findRecords(ctx, colInvoices, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, recordDoc.invoice)
}

// ListCashEntries queries cash movements dated within [start, end]
func (s *MongoStore) ListCashEntries(ctx context.Context, accountID string, start, end time.Time) ([]ledger.CashEntry, error) {
	docs, err := s.findRecords(ctx, colCash, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, recordDoc.cash)
}

// ListPnL queries the monthly rows overlapping [start, end]
func (s *MongoStore) ListPnL(ctx context.Context, accountID string, start, end time.Time) ([]ledger.PnLLineItem, error) {
	filter := bson.M{
		"account_id": accountID,
		"month": bson.M{
			"$gte": monthStart(start),
			"$lt":  dayAfter(end),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "month", Value: 1}})

	cursor, err := s.db.Collection(colPnL).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pnl: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []pnlDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode pnl: %w", err)
	}

	out := make([]ledger.PnLLineItem, 0, len(docs))
	for _, d := range docs {
		row, err := d.row()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	sortPnL(out)
	return out, nil
}

// GetOpeningCash returns the latest balance on or before asOf
func (s *MongoStore) GetOpeningCash(ctx context.Context, accountID string, asOf time.Time) (*Balance, error) {
	filter := bson.M{
		"account_id": accountID,
		"as_of":      bson.M{"$lte": asOf},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "as_of", Value: -1}})

	var d balanceDoc
	err := s.db.Collection(colBalances).FindOne(ctx, filter, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opening cash: %w", err)
	}
	return d.balance()
}

// GetCompanyProfile retrieves the profile of an account
func (s *MongoStore) GetCompanyProfile(ctx context.Context, accountID string) (*ledger.CompanyProfile, error) {
	var profile ledger.CompanyProfile
	err := s.db.Collection(colProfiles).FindOne(ctx, bson.M{"account_id": accountID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("company profile %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return &profile, nil
}

// GetExpenseSpikes returns the categories flagged in the months overlapping
// [start, end]
func (s *MongoStore) GetExpenseSpikes(ctx context.Context, accountID string, start, end time.Time) (map[string]bool, error) {
	filter := bson.M{
		"account_id": accountID,
		"month": bson.M{
			"$gte": monthStart(start),
			"$lt":  dayAfter(end),
		},
	}
	cursor, err := s.db.Collection(colSpikes).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense spikes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []spikesDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expense spikes: %w", err)
	}
	return spikeSet(docs), nil
}

func (s *MongoStore) upsertRecords(ctx context.Context, collection string, docs []recordDoc) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.Key}).
			SetReplacement(d).
			SetUpsert(true)
	}
	if _, err := s.db.Collection(collection).BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	return nil
}

// PutRevenue upserts revenue lines
func (s *MongoStore) PutRevenue(ctx context.Context, accountID string, lines []ledger.RevenueLine) error {
	docs := make([]recordDoc, len(lines))
	for i, l := range lines {
		docs[i] = revenueDoc(accountID, l)
	}
	return s.upsertRecords(ctx, colRevenue, docs)
}

// PutInvoices upserts invoices
func (s *MongoStore) PutInvoices(ctx context.Context, accountID string, invoices []ledger.Invoice) error {
	docs := make([]recordDoc, len(invoices))
	for i, inv := range invoices {
		docs[i] = invoiceDoc(accountID, inv)
	}
	return s.upsertRecords(ctx, colInvoices, docs)
}

// PutCashEntries upserts cash entries
func (s *MongoStore) PutCashEntries(ctx context.Context, accountID string, entries []ledger.CashEntry) error {
	docs := make([]recordDoc, len(entries))
	for i, e := range entries {
		docs[i] = cashDoc(accountID, e)
	}
	return s.upsertRecords(ctx, colCash, docs)
}

// PutPnL upserts P&L rows keyed by month
func (s *MongoStore) PutPnL(ctx context.Context, accountID string, rows []ledger.PnLLineItem) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(rows))
	for i, row := range rows {
		d := newPnLDoc(accountID, row)
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.Key}).
			SetReplacement(d).
			SetUpsert(true)
	}
	if _, err := s.db.Collection(colPnL).BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("failed to write pnl: %w", err)
	}
	return nil
}

// PutOpeningCash records the balance held on asOf
func (s *MongoStore) PutOpeningCash(ctx context.Context, accountID string, asOf time.Time, amount decimal.Decimal) error {
	d := newBalanceDoc(accountID, asOf, amount)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(colBalances).ReplaceOne(ctx, bson.M{"_id": d.Key}, d, opts); err != nil {
		return fmt.Errorf("failed to write opening cash: %w", err)
	}
	return nil
}

// PutCompanyProfile creates or replaces a profile
func (s *MongoStore) PutCompanyProfile(ctx context.Context, profile ledger.CompanyProfile) error {
	if profile.AccountID == "" {
		return fmt.Errorf("company profile: account id is required")
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(colProfiles).ReplaceOne(ctx, bson.M{"account_id": profile.AccountID}, profile, opts); err != nil {
		return fmt.Errorf("failed to write company profile: %w", err)
	}
	return nil
}

// PutExpenseSpikes replaces the spiking categories of one month
func (s *MongoStore) PutExpenseSpikes(ctx context.Context, accountID string, month time.Time, categories []string) error {
	d := newSpikesDoc(accountID, month, categories)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(colSpikes).ReplaceOne(ctx, bson.M{"_id": d.Key}, d, opts); err != nil {
		return fmt.Errorf("failed to write expense spikes: %w", err)
	}
	return nil
}
