package profiles

import (
	"context"

	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	doctorProfileCollection = "doctor_profiles"
	patientCollection       = "patients"
)

// doctorProfileDocument is the slice of the profile document this subsystem
// reads. Profile ownership lives elsewhere; only working hours are consumed.
type doctorProfileDocument struct {
	ID           string              `bson:"_id"`
	WorkingHours models.WorkingHours `bson:"working_hours"`
}

type DoctorProfileMongoService struct {
	DB     *mongo.Client
	DBName string
}

func NewDoctorProfileMongoService(db *mongo.Client, dbName string) contracts.DoctorProfileService {
	return &DoctorProfileMongoService{DB: db, DBName: dbName}
}

func (s *DoctorProfileMongoService) collection() *mongo.Collection {
	return s.DB.Database(s.DBName).Collection(doctorProfileCollection)
}

func (s *DoctorProfileMongoService) GetWorkingHours(ctx context.Context, doctorID string) (*models.WorkingHours, error) {
	var document doctorProfileDocument
	err := s.collection().FindOne(ctx, bson.M{"_id": doctorID}).Decode(&document)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrMongoOperation(err)
	}
	return &document.WorkingHours, nil
}

func (s *DoctorProfileMongoService) Exists(ctx context.Context, doctorID string) (bool, error) {
	count, err := s.collection().CountDocuments(ctx, bson.M{"_id": doctorID})
	if err != nil {
		return false, exceptions.ErrMongoOperation(err)
	}
	return count > 0, nil
}

type PatientMongoService struct {
	DB     *mongo.Client
	DBName string
}

func NewPatientMongoService(db *mongo.Client, dbName string) contracts.PatientService {
	return &PatientMongoService{DB: db, DBName: dbName}
}

func (s *PatientMongoService) Exists(ctx context.Context, patientID string) (bool, error) {
	count, err := s.DB.Database(s.DBName).Collection(patientCollection).CountDocuments(ctx, bson.M{"_id": patientID})
	if err != nil {
		return false, exceptions.ErrMongoOperation(err)
	}
	return count > 0, nil
}
