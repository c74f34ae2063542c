package appointments

import (
	"context"
	"time"

	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const appointmentCollection = "appointments"

type AppointmentMongoRepository struct {
	DB         *mongo.Client
	DBName     string
	Collection string
}

func NewAppointmentMongoRepository(db *mongo.Client, dbName string) contracts.AppointmentRepository {
	return &AppointmentMongoRepository{
		DB:         db,
		DBName:     dbName,
		Collection: appointmentCollection,
	}
}

func (r *AppointmentMongoRepository) collection() *mongo.Collection {
	return r.DB.Database(r.DBName).Collection(r.Collection)
}

func (r *AppointmentMongoRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	_, err := r.collection().InsertOne(ctx, appointment)
	if err != nil {
		return exceptions.ErrMongoOperation(err)
	}
	return nil
}

func (r *AppointmentMongoRepository) FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.collection().FindOne(ctx, bson.M{"_id": appointmentID}).Decode(&appointment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	return &appointment, nil
}

func (r *AppointmentMongoRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": appointment.ID}, appointment)
	if err != nil {
		return exceptions.ErrMongoOperation(err)
	}
	if result.MatchedCount == 0 {
		return exceptions.ErrAppointmentNotFound(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *AppointmentMongoRepository) FindActiveByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	filter := bson.M{
		"doctor_id": doctorID,
		"status":    bson.M{"$in": []string{string(models.AppointmentScheduled), string(models.AppointmentConfirmed)}},
	}
	return r.findAll(ctx, filter)
}

func (r *AppointmentMongoRepository) FindActiveByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	// Half-open range match: anything whose interval intersects [from, to).
	filter := bson.M{
		"doctor_id":  doctorID,
		"status":     bson.M{"$in": []string{string(models.AppointmentScheduled), string(models.AppointmentConfirmed)}},
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}
	return r.findAll(ctx, filter)
}

func (r *AppointmentMongoRepository) FindByDoctorInRange(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"doctor_id":  doctorID,
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}
	return r.findAll(ctx, filter)
}

func (r *AppointmentMongoRepository) FindByExternalEventID(ctx context.Context, doctorID, externalEventID string) (*models.Appointment, error) {
	var appointment models.Appointment
	filter := bson.M{"doctor_id": doctorID, "external_event_id": externalEventID}
	err := r.collection().FindOne(ctx, filter).Decode(&appointment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	return &appointment, nil
}

func (r *AppointmentMongoRepository) findAll(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	return appointments, nil
}
