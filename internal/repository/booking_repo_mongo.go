package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PNR         string             `bson:"pnr"`
	Train       primitive.ObjectID `bson:"train"`
	CustomerID  string             `bson:"customerId,omitempty"`
	Passengers  []domain.Passenger `bson:"passengers"`
	ContactInfo domain.ContactInfo `bson:"contactInfo"`
	BookingDate time.Time          `bson:"bookingDate"`
	Status      string             `bson:"status"`
	TotalFare   float64            `bson:"totalFare"`

	// filled by the $lookup stage of List
	TrainDocs []trainDocument `bson:"trainDocs,omitempty"`
}

func (d bookingDocument) toDomain() domain.Booking {
	b := domain.Booking{
		ID:          d.ID.Hex(),
		PNR:         d.PNR,
		TrainID:     d.Train.Hex(),
		CustomerID:  d.CustomerID,
		Passengers:  d.Passengers,
		ContactInfo: d.ContactInfo,
		BookingDate: d.BookingDate,
		Status:      domain.BookingStatus(d.Status),
		TotalFare:   d.TotalFare,
	}
	if len(d.TrainDocs) > 0 {
		t := d.TrainDocs[0].toDomain()
		b.Train = &t
	}
	return b
}

type MongoBookingRepository struct {
	coll *mongo.Collection
}

func NewMongoBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{coll: db.Collection(bookingsCollection)}
}

func (r *MongoBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	trainID, err := primitive.ObjectIDFromHex(booking.TrainID)
	if err != nil {
		return notFound("train", booking.TrainID)
	}

	doc := bookingDocument{
		ID:          primitive.NewObjectID(),
		PNR:         booking.PNR,
		Train:       trainID,
		CustomerID:  booking.CustomerID,
		Passengers:  booking.Passengers,
		ContactInfo: booking.ContactInfo,
		BookingDate: booking.BookingDate,
		Status:      string(booking.Status),
		TotalFare:   booking.TotalFare,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("pnr %q already exists: %w", booking.PNR, domain.ErrConflict)
		}
		return storeError("insert booking", err)
	}
	booking.ID = doc.ID.Hex()
	return nil
}

func (r *MongoBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("booking", id)
	}

	var doc bookingDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("booking", id)
		}
		return nil, storeError("find booking", err)
	}
	b := doc.toDomain()
	return &b, nil
}

func (r *MongoBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	cursor, err := r.coll.Aggregate(ctx, bookingListPipeline(filter))
	if err != nil {
		return nil, storeError("aggregate bookings", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode bookings", err)
	}

	bookings := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toDomain())
	}
	return bookings, nil
}

func (r *MongoBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound("booking", id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookingDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"status": string(status)}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("booking", id)
		}
		return nil, storeError("update booking status", err)
	}
	b := doc.toDomain()
	return &b, nil
}

func bookingListPipeline(filter domain.BookingFilter) mongo.Pipeline {
	match := bson.D{}
	if filter.CustomerID != "" {
		match = append(match, bson.E{Key: "customerId", Value: filter.CustomerID})
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "bookingDate", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: trainsCollection},
			{Key: "localField", Value: "train"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "trainDocs"},
		}}},
	}
}

var _ BookingRepository = (*MongoBookingRepository)(nil)
