package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

type fieldDoc struct {
	FieldName  string `bson:"fieldName"`
	IsRequired bool   `bson:"isRequired"`
	Order      int    `bson:"order"`
}

type formDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	FormName       string             `bson:"formName"`
	SchoolName     string             `bson:"schoolName"`
	SchoolAddress  string             `bson:"schoolAddress"`
	SelectedFields []fieldDoc         `bson:"selectedFields"`
	IsActive       bool               `bson:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func toFormDoc(f *forms.FormConfig) formDoc {
	d := formDoc{
		FormName:       f.FormName,
		SchoolName:     f.SchoolName,
		SchoolAddress:  f.SchoolAddress,
		SelectedFields: make([]fieldDoc, len(f.SelectedFields)),
		IsActive:       f.IsActive,
		CreatedAt:      f.CreatedAt,
	}
	for i, sf := range f.SelectedFields {
		d.SelectedFields[i] = fieldDoc{FieldName: string(sf.FieldName), IsRequired: sf.IsRequired, Order: sf.Order}
	}
	return d
}

func (d formDoc) form() forms.FormConfig {
	f := forms.FormConfig{
		ID:             d.ID.Hex(),
		FormName:       d.FormName,
		SchoolName:     d.SchoolName,
		SchoolAddress:  d.SchoolAddress,
		SelectedFields: make([]forms.SelectedField, len(d.SelectedFields)),
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
	}
	for i, sf := range d.SelectedFields {
		f.SelectedFields[i] = forms.SelectedField{FieldName: forms.FieldKey(sf.FieldName), IsRequired: sf.IsRequired, Order: sf.Order}
	}
	return f
}

type formRepo struct{ c *mongo.Collection }

func (r formRepo) Create(ctx context.Context, f *forms.FormConfig) error {
	doc := toFormDoc(f)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("form %q: %w", f.FormName, storage.ErrDuplicate)
		}
		return fmt.Errorf("insert form: %w", err)
	}
	f.ID = doc.ID.Hex()
	f.CreatedAt = doc.CreatedAt
	return nil
}

func (r formRepo) Get(ctx context.Context, id string) (*forms.FormConfig, error) {
	oid, err := objectID("form", id)
	if err != nil {
		return nil, err
	}
	var doc formDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, "form", id)
	}
	f := doc.form()
	return &f, nil
}

func (r formRepo) List(ctx context.Context, activeOnly bool) ([]forms.FormConfig, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	return r.find(ctx, filter)
}

func (r formRepo) ListBySchool(ctx context.Context, school string) ([]forms.FormConfig, error) {
	return r.find(ctx, bson.M{"schoolName": school})
}

func (r formRepo) find(ctx context.Context, filter bson.M) ([]forms.FormConfig, error) {
	cur, err := r.c.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find forms: %w", err)
	}
	var docs []formDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	out := make([]forms.FormConfig, len(docs))
	for i, d := range docs {
		out[i] = d.form()
	}
	return out, nil
}

func (r formRepo) Update(ctx context.Context, f *forms.FormConfig) error {
	oid, err := objectID("form", f.ID)
	if err != nil {
		return err
	}
	doc := toFormDoc(f)
	set := bson.M{
		"formName":       doc.FormName,
		"schoolName":     doc.SchoolName,
		"schoolAddress":  doc.SchoolAddress,
		"selectedFields": doc.SelectedFields,
		"isActive":       doc.IsActive,
	}
	res, err := r.c.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("form %q: %w", f.FormName, storage.ErrDuplicate)
		}
		return fmt.Errorf("update form: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("form %s: %w", f.ID, storage.ErrNotFound)
	}
	return nil
}

func (r formRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID("form", id)
	if err != nil {
		return err
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("form %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
