package googlecalendar

import (
	"context"

	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollectionCalendarCredentials = "calendar_credentials"

type CredentialMongoRepository struct {
	Collection *mongo.Collection
}

func NewCredentialMongoRepository(db *mongo.Client, dbName string) contracts.CredentialRepository {
	return &CredentialMongoRepository{
		Collection: db.Database(dbName).Collection(mongoCollectionCalendarCredentials),
	}
}

// Upsert replaces the credential document keyed by doctor_id. One document
// per doctor keeps the at-most-one-active-credential invariant in the data
// shape itself.
func (r *CredentialMongoRepository) Upsert(ctx context.Context, credential *models.CalendarCredential) error {
	filter := bson.M{"doctor_id": credential.DoctorID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.Collection.ReplaceOne(ctx, filter, credential, opts)
	if err != nil {
		return exceptions.ErrMongoOperation(err)
	}
	return nil
}

func (r *CredentialMongoRepository) FindActiveByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error) {
	var credential models.CalendarCredential
	err := r.Collection.FindOne(ctx, bson.M{"doctor_id": doctorID, "is_active": true}).Decode(&credential)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoOperation(err)
	}
	return &credential, nil
}

func (r *CredentialMongoRepository) FindByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error) {
	var credential models.CalendarCredential
	err := r.Collection.FindOne(ctx, bson.M{"doctor_id": doctorID}).Decode(&credential)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoOperation(err)
	}
	return &credential, nil
}

func (r *CredentialMongoRepository) FindAllActive(ctx context.Context) ([]models.CalendarCredential, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	defer cursor.Close(ctx)

	var credentials []models.CalendarCredential
	if err := cursor.All(ctx, &credentials); err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	return credentials, nil
}
