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

type submissionDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	FormConfigID   primitive.ObjectID `bson:"formConfigId"`
	SubmissionData bson.M             `bson:"submissionData"`
	SubmittedAt    time.Time          `bson:"submittedAt"`
}

func (d submissionDoc) submission() forms.Submission {
	return forms.Submission{
		ID:           d.ID.Hex(),
		FormConfigID: d.FormConfigID.Hex(),
		Data:         fromBSONValues(d.SubmissionData),
		SubmittedAt:  d.SubmittedAt,
	}
}

// toBSONValues stores photos under the keys existing documents use.
func toBSONValues(v forms.Values) bson.M {
	out := make(bson.M, len(v))
	for k, val := range v {
		switch p := val.(type) {
		case *forms.Photo:
			if p != nil {
				out[k] = photoDoc(*p)
			}
		case forms.Photo:
			out[k] = photoDoc(p)
		default:
			out[k] = val
		}
	}
	return out
}

func photoDoc(p forms.Photo) bson.M {
	return bson.M{
		"filename":           p.Filename,
		"url":                p.URL,
		"cloudinaryPublicId": p.PublicID,
		"mimetype":           p.MimeType,
		"size":               p.Size,
	}
}

// fromBSONValues turns decoded documents into plain Go maps and slices so
// the forms package sees the same shapes it gets from JSON.
func fromBSONValues(m bson.M) forms.Values {
	out := make(forms.Values, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.A:
		a := make([]any, len(x))
		for i, e := range x {
			a[i] = plain(e)
		}
		return a
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.ObjectID:
		return x.Hex()
	default:
		return v
	}
}

type submissionRepo struct{ c *mongo.Collection }

var submittedNewestFirst = bson.D{{Key: "submittedAt", Value: -1}, {Key: "_id", Value: -1}}

func (r submissionRepo) Create(ctx context.Context, s *forms.Submission) error {
	formID, err := primitive.ObjectIDFromHex(s.FormConfigID)
	if err != nil {
		return fmt.Errorf("form %s: %w", s.FormConfigID, storage.ErrNotFound)
	}
	doc := submissionDoc{
		ID:             primitive.NewObjectID(),
		FormConfigID:   formID,
		SubmissionData: toBSONValues(s.Data),
		SubmittedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	s.ID = doc.ID.Hex()
	s.SubmittedAt = doc.SubmittedAt
	return nil
}

func (r submissionRepo) Get(ctx context.Context, id string) (*forms.Submission, error) {
	oid, err := objectID("submission", id)
	if err != nil {
		return nil, err
	}
	var doc submissionDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, "submission", id)
	}
	s := doc.submission()
	return &s, nil
}

func (r submissionRepo) ListByForms(ctx context.Context, formIDs ...string) ([]forms.Submission, error) {
	oids := objectIDs(formIDs)
	if len(oids) == 0 {
		return []forms.Submission{}, nil
	}
	return r.find(ctx, bson.M{"formConfigId": bson.M{"$in": oids}}, options.Find().SetSort(submittedNewestFirst))
}

func (r submissionRepo) ListByIDs(ctx context.Context, ids []string) ([]forms.Submission, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []forms.Submission{}, nil
	}
	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]forms.Submission, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]forms.Submission, 0, len(found))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r submissionRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]forms.Submission, error) {
	cur, err := r.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	var docs []submissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	out := make([]forms.Submission, len(docs))
	for i, d := range docs {
		out[i] = d.submission()
	}
	return out, nil
}

func (r submissionRepo) CountByForm(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$formConfigId"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
		N  int                `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ID.Hex()] = row.N
	}
	return counts, nil
}

func (r submissionRepo) UpdateData(ctx context.Context, id string, data forms.Values) (*forms.Submission, error) {
	oid, err := objectID("submission", id)
	if err != nil {
		return nil, err
	}
	var doc submissionDoc
	err = r.c.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"submissionData": toBSONValues(data)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, notFound(err, "submission", id)
	}
	s := doc.submission()
	return &s, nil
}

func (r submissionRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID("submission", id)
	if err != nil {
		return err
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("submission %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (r submissionRepo) DeleteByForm(ctx context.Context, formID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return 0, nil
	}
	res, err := r.c.DeleteMany(ctx, bson.M{"formConfigId": oid})
	if err != nil {
		return 0, fmt.Errorf("delete submissions of form %s: %w", formID, err)
	}
	return int(res.DeletedCount), nil
}
