package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haripriya/clinic-backend/internal/core/domain"
	"github.com/haripriya/clinic-backend/internal/core/ports"
)

const (
	collectionPatients = "patients"

	indexPatientCode  = "uniq_patient_code"
	indexPatientPhone = "uniq_patient_phone"
	indexPatientEmail = "uniq_patient_email"
)

// patientSortColumns maps API sort keys onto document fields.
var patientSortColumns = map[string]string{
	ports.PatientSortID:          "_id",
	ports.PatientSortFullName:    "full_name",
	ports.PatientSortPatientCode: "patient_code",
	ports.PatientSortDateOfBirth: "date_of_birth",
	ports.PatientSortCreatedAt:   "created_at",
}

type PatientRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{db: db, col: db.Collection(collectionPatients)}
}

// Create assigns the next patient id and inserts the document.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, collectionPatients)
	if err != nil {
		return nil, err
	}
	created := *p
	created.ID = id

	if _, err := r.col.InsertOne(ctx, &created); err != nil {
		return nil, mapPatientWriteError(err)
	}
	return &created, nil
}

// Update replaces the stored document with p.
func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapPatientWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

func mapPatientWriteError(err error) error {
	switch {
	case isDuplicateOn(err, indexPatientCode):
		return domain.ErrDuplicateCode
	case isDuplicateOn(err, indexPatientPhone):
		return domain.ErrDuplicatePhone
	case isDuplicateOn(err, indexPatientEmail):
		return domain.ErrDuplicateEmail
	default:
		return fmt.Errorf("write patient: %w", err)
	}
}

func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *PatientRepository) FindByCode(ctx context.Context, code string) (*domain.Patient, error) {
	return r.findOne(ctx, bson.M{"patient_code": code})
}

func (r *PatientRepository) findOne(ctx context.Context, filter bson.M) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Patient
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, bson.M{"phone_number": phone})
}

func (r *PatientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	return r.exists(ctx, bson.M{"email": email})
}

func (r *PatientRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, bson.M{"patient_code": code})
}

func (r *PatientRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count patients: %w", err)
	}
	return n > 0, nil
}

// List returns one page of patients matching filter and the total count.
func (r *PatientRepository) List(ctx context.Context, filter ports.ListPatientsFilter) ([]*domain.Patient, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := buildPatientQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	cur, err := r.col.Find(ctx, query, buildPatientFindOptions(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Patient, 0, filter.Size)
	for cur.Next(ctx) {
		var p domain.Patient
		if err := cur.Decode(&p); err != nil {
			return nil, 0, fmt.Errorf("decode patient: %w", err)
		}
		items = append(items, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate patients: %w", err)
	}
	return items, total, nil
}

func buildPatientQuery(filter ports.ListPatientsFilter) bson.M {
	query := bson.M{}
	if filter.Active != nil {
		query["is_active"] = *filter.Active
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"full_name": re},
			bson.M{"phone_number": re},
			bson.M{"patient_code": re},
		}
	}
	return query
}

func buildPatientFindOptions(filter ports.ListPatientsFilter) *options.FindOptions {
	column, ok := patientSortColumns[filter.SortBy]
	if !ok {
		column = "_id"
	}
	direction := 1
	if filter.SortDesc {
		direction = -1
	}
	sort := bson.D{{Key: column, Value: direction}}
	if column != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: direction})
	}
	return options.Find().
		SetSort(sort).
		SetSkip(int64(filter.Page) * int64(filter.Size)).
		SetLimit(int64(filter.Size))
}

// EnsureIndexes creates the unique and lookup indexes on the patients collection.
func (r *PatientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patient_code", Value: 1}},
			Options: options.Index().SetName(indexPatientCode).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetName(indexPatientPhone).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName(indexPatientEmail).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "_id", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
