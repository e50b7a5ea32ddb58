package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cardsheet/pkg/settings"
)

type backgroundDoc struct {
	ID         any       `bson:"_id"`
	URL        string    `bson:"url"`
	PublicID   string    `bson:"publicId"`
	Filename   string    `bson:"filename"`
	UploadedAt time.Time `bson:"uploadedAt"`
}

type settingsDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	BackgroundImages   []backgroundDoc    `bson:"backgroundImages"`
	ActiveBackgroundID any                `bson:"activeBackgroundId"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

// encodeID stores hex ids as ObjectIDs, matching documents written by
// earlier deployments, and anything else as a string.
func encodeID(id string) any {
	if id == "" {
		return nil
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func decodeID(v any) string {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case string:
		return x
	default:
		return ""
	}
}

func toSettingsDoc(s *settings.Settings) settingsDoc {
	d := settingsDoc{
		BackgroundImages:   make([]backgroundDoc, len(s.BackgroundImages)),
		ActiveBackgroundID: encodeID(s.ActiveBackgroundID),
		UpdatedAt:          s.UpdatedAt,
	}
	for i, img := range s.BackgroundImages {
		d.BackgroundImages[i] = backgroundDoc{
			ID:         encodeID(img.ID),
			URL:        img.URL,
			PublicID:   img.PublicID,
			Filename:   img.Filename,
			UploadedAt: img.UploadedAt,
		}
	}
	return d
}

func (d settingsDoc) settings() *settings.Settings {
	s := &settings.Settings{
		BackgroundImages:   make([]settings.BackgroundImage, len(d.BackgroundImages)),
		ActiveBackgroundID: decodeID(d.ActiveBackgroundID),
		UpdatedAt:          d.UpdatedAt,
	}
	for i, img := range d.BackgroundImages {
		s.BackgroundImages[i] = settings.BackgroundImage{
			ID:         decodeID(img.ID),
			URL:        img.URL,
			PublicID:   img.PublicID,
			Filename:   img.Filename,
			UploadedAt: img.UploadedAt,
		}
	}
	return s
}

type settingsRepo struct{ c *mongo.Collection }

func (r settingsRepo) Load(ctx context.Context) (*settings.Settings, error) {
	var doc settingsDoc
	err := r.c.FindOne(ctx, bson.M{}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s := settings.New()
		if err := r.Save(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return doc.settings(), nil
}

// Save replaces the single settings document, creating it if needed.
func (r settingsRepo) Save(ctx context.Context, s *settings.Settings) error {
	doc := toSettingsDoc(s)
	update := bson.M{"$set": bson.M{
		"backgroundImages":   doc.BackgroundImages,
		"activeBackgroundId": doc.ActiveBackgroundID,
		"updatedAt":          doc.UpdatedAt,
	}}
	_, err := r.c.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
