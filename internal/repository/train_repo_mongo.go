package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	trainsCollection   = "trains"
	bookingsCollection = "bookings"
)

type trainDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	TrainNumber   string             `bson:"trainNumber"`
	TrainName     string             `bson:"trainName"`
	Source        string             `bson:"source"`
	Destination   string             `bson:"destination"`
	DepartureTime string             `bson:"departureTime"`
	ArrivalTime   string             `bson:"arrivalTime"`
	Frequency     string             `bson:"frequency"`
	BasePrice     float64            `bson:"basePrice"`
	TotalSeats    int                `bson:"totalSeats"`
	Status        string             `bson:"status"`
}

func newTrainDocument(t *domain.Train) trainDocument {
	return trainDocument{
		TrainNumber:   t.TrainNumber,
		TrainName:     t.TrainName,
		Source:        t.Source,
		Destination:   t.Destination,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Frequency:     string(t.Frequency),
		BasePrice:     t.BasePrice,
		TotalSeats:    t.TotalSeats,
		Status:        string(t.Status),
	}
}

func (d trainDocument) toDomain() domain.Train {
	return domain.Train{
		ID:            d.ID.Hex(),
		TrainNumber:   d.TrainNumber,
		TrainName:     d.TrainName,
		Source:        d.Source,
		Destination:   d.Destination,
		DepartureTime: d.DepartureTime,
		ArrivalTime:   d.ArrivalTime,
		Frequency:     domain.TrainFrequency(d.Frequency),
		BasePrice:     d.BasePrice,
		TotalSeats:    d.TotalSeats,
		Status:        domain.TrainStatus(d.Status),
	}
}

type MongoTrainRepository struct {
	coll *mongo.Collection
}

func NewMongoTrainRepository(db *mongo.Database) *MongoTrainRepository {
	return &MongoTrainRepository{coll: db.Collection(trainsCollection)}
}

func (r *MongoTrainRepository) List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	opts := options.Find().SetSort(bson.D{{Key: "trainNumber", Value: 1}})
	cursor, err := r.coll.Find(ctx, trainFilterQuery(filter), opts)
	if err != nil {
		return nil, storeError("find trains", err)
	}
	defer cursor.Close(ctx)

	var docs []trainDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode trains", err)
	}

	trains := make([]domain.Train, 0, len(docs))
	for _, d := range docs {
		trains = append(trains, d.toDomain())
	}
	return trains, nil
}

func (r *MongoTrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("train", id)
	}

	var doc trainDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("train", id)
		}
		return nil, storeError("find train", err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *MongoTrainRepository) Create(ctx context.Context, train *domain.Train) error {
	doc := newTrainDocument(train)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("train number %q already exists: %w", train.TrainNumber, domain.ErrConflict)
		}
		return storeError("insert train", err)
	}
	train.ID = doc.ID.Hex()
	return nil
}

func (r *MongoTrainRepository) Update(ctx context.Context, train *domain.Train) error {
	objID, err := primitive.ObjectIDFromHex(train.ID)
	if err != nil {
		return notFound("train", train.ID)
	}

	doc := newTrainDocument(train)
	doc.ID = objID
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": objID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("train number %q already exists: %w", train.TrainNumber, domain.ErrConflict)
		}
		return storeError("replace train", err)
	}
	if res.MatchedCount == 0 {
		return notFound("train", train.ID)
	}
	return nil
}

func (r *MongoTrainRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound("train", id)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return storeError("delete train", err)
	}
	if res.DeletedCount == 0 {
		return notFound("train", id)
	}
	return nil
}

func trainFilterQuery(f domain.TrainFilter) bson.M {
	query := bson.M{}
	if f.Source != "" {
		query["source"] = containsFold(f.Source)
	}
	if f.Destination != "" {
		query["destination"] = containsFold(f.Destination)
	}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}
	if f.Query != "" {
		query["$or"] = bson.A{
			bson.M{"trainName": containsFold(f.Query)},
			bson.M{"trainNumber": primitive.Regex{Pattern: regexp.QuoteMeta(f.Query)}},
		}
	}
	return query
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

var _ TrainRepository = (*MongoTrainRepository)(nil)
