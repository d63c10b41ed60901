// internal/repository/mongo/entry_repo.go
package mongo

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

// entryDocument is the stored shape of an Entry. The date is kept as the same
// YYYY-MM-DD string the CSV table uses.
type entryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Date      string             `bson:"date"`
	Steps     int                `bson:"steps"`
	Energy    int                `bson:"energy"`
	Notes     string             `bson:"notes"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// mongoEntryRepository implements repository.EntryRepository
type mongoEntryRepository struct {
	collection *mongo.Collection
	log        *slog.Logger
}

// NewMongoEntryRepository creates an Entry Store backed by one collection.
func NewMongoEntryRepository(db *mongo.Database, collection string, logger *slog.Logger) repository.EntryRepository {
	return &mongoEntryRepository{
		collection: db.Collection(collection),
		log:        logger,
	}
}

// Append inserts one document. ObjectIDs are generated client-side and
// increase monotonically, so _id order is append order.
func (r *mongoEntryRepository) Append(ctx context.Context, entry domain.Entry) error {
	doc := entryDocument{
		ID:        primitive.NewObjectID(),
		Date:      entry.DateString(),
		Steps:     entry.Steps,
		Energy:    entry.Energy,
		Notes:     entry.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return &repository.PersistenceError{Op: "append", Key: r.collection.Name(), Err: err}
	}
	return nil
}

// Load reads every document in insertion order.
func (r *mongoEntryRepository) Load(ctx context.Context) (domain.EntryTable, repository.LoadReport, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, repository.LoadReport{}, err
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, repository.LoadReport{}, err
	}
	if len(docs) == 0 {
		return nil, repository.LoadReport{}, repository.ErrEmptyStore
	}

	table, report := toEntries(docs)
	if !report.Clean() {
		r.log.Warn("entry collection has documents with bad dates",
			"collection", r.collection.Name(), "dropped", report.DroppedDate)
	}
	return table, report, nil
}

func toEntries(docs []entryDocument) (domain.EntryTable, repository.LoadReport) {
	report := repository.LoadReport{Rows: len(docs)}
	table := make(domain.EntryTable, 0, len(docs))
	for _, doc := range docs {
		date, err := domain.ParseDate(doc.Date)
		if err != nil {
			report.DroppedDate++
			continue
		}
		table = append(table, domain.Entry{
			Date:   date,
			Steps:  doc.Steps,
			Energy: doc.Energy,
			Notes:  doc.Notes,
		})
	}
	return table, report
}

// EnsureEntryIndexes creates necessary indexes. Call during startup.
func EnsureEntryIndexes(ctx context.Context, collection *mongo.Collection, logger *slog.Logger) {
	indexes := []mongo.IndexModel{
		{
			// Date range filters on the results page
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("failed to create indexes", "collection", collection.Name(), "err", err)
	}
}
