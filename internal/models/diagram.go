package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id format")
)

// Diagram is a block diagram saved by a user.
type Diagram struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	Owner           string                `bson:"owner" json:"owner"`
	Name            string                `bson:"name" json:"name" validate:"required,max=200"`
	Edges           []EdgePayload         `bson:"edges" json:"edges" validate:"dive"`
	NodeDetails     map[string]NodeDetail `bson:"nodeDetails" json:"nodeDetails" validate:"dive"`
	CalculationType string                `bson:"calculationType" json:"calculationType" validate:"omitempty,oneof=Reliability Availability"`
	LastResult      *Evaluation           `bson:"lastResult,omitempty" json:"lastResult,omitempty"`
	CreatedAt       time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// DiagramStore persists diagrams. Every lookup is scoped to the owner.
type DiagramStore interface {
	List(ctx context.Context, owner string) ([]Diagram, error)
	Get(ctx context.Context, owner, id string) (*Diagram, error)
	Create(ctx context.Context, d *Diagram) error
	Update(ctx context.Context, d *Diagram) error
	Delete(ctx context.Context, owner, id string) error
	SaveResult(ctx context.Context, owner, id string, ev Evaluation) error
}

type MongoDiagramStore struct {
	collection *mongo.Collection
}

func NewMongoDiagramStore(db *mongo.Database) *MongoDiagramStore {
	return &MongoDiagramStore{collection: db.Collection("diagrams")}
}

func ownedFilter(owner, id string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return bson.M{"_id": objectID, "owner": owner}, nil
}

func (s *MongoDiagramStore) List(ctx context.Context, owner string) ([]Diagram, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := s.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer cur.Close(ctx)

	diagrams := []Diagram{}
	if err := cur.All(ctx, &diagrams); err != nil {
		return nil, fmt.Errorf("decode diagrams: %w", err)
	}
	return diagrams, nil
}

func (s *MongoDiagramStore) Get(ctx context.Context, owner, id string) (*Diagram, error) {
	filter, err := ownedFilter(owner, id)
	if err != nil {
		return nil, err
	}

	var d Diagram
	if err := s.collection.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get diagram %s: %w", id, err)
	}
	return &d, nil
}

func (s *MongoDiagramStore) Create(ctx context.Context, d *Diagram) error {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.CreatedAt, d.UpdatedAt = now, now
	d.LastResult = nil

	if _, err := s.collection.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert diagram: %w", err)
	}
	return nil
}

func (s *MongoDiagramStore) Update(ctx context.Context, d *Diagram) error {
	filter := bson.M{"_id": d.ID, "owner": d.Owner}
	d.UpdatedAt = time.Now().UTC()

	// Editing the diagram invalidates the stored result.
	update := bson.M{
		"$set": bson.M{
			"name":            d.Name,
			"edges":           d.Edges,
			"nodeDetails":     d.NodeDetails,
			"calculationType": d.CalculationType,
			"updatedAt":       d.UpdatedAt,
		},
		"$unset": bson.M{"lastResult": ""},
	}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update diagram %s: %w", d.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	d.LastResult = nil
	return nil
}

func (s *MongoDiagramStore) Delete(ctx context.Context, owner, id string) error {
	filter, err := ownedFilter(owner, id)
	if err != nil {
		return err
	}

	res, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete diagram %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDiagramStore) SaveResult(ctx context.Context, owner, id string, ev Evaluation) error {
	filter, err := ownedFilter(owner, id)
	if err != nil {
		return err
	}

	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"lastResult": ev}})
	if err != nil {
		return fmt.Errorf("save result for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
