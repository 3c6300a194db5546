package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/rental-system/internal/core/domain"
)

type VehicleRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) *VehicleRepository {
	return &VehicleRepository{db: db, coll: db.Collection(vehiclesCollection)}
}

// mongoVehicle stores the price as Decimal128 so it round-trips exactly.
type mongoVehicle struct {
	ID          int64                `bson:"_id"`
	Type        string               `bson:"type"`
	Brand       string               `bson:"brand"`
	Model       string               `bson:"model"`
	RegNumber   string               `bson:"reg_number"`
	PricePerDay primitive.Decimal128 `bson:"price_per_day"`
	Available   bool                 `bson:"available"`
}

func (r *VehicleRepository) ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"type": string(t), "available": true},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Vehicle, 0)
	for cur.Next(ctx) {
		var mv mongoVehicle
		if err := cur.Decode(&mv); err != nil {
			return nil, fmt.Errorf("decode vehicle: %w", err)
		}
		v, err := mv.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return out, nil
}

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	var mv mongoVehicle
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return mv.toDomain()
}

func (r *VehicleRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	price, err := primitive.ParseDecimal128(v.PricePerDay.String())
	if err != nil {
		return nil, fmt.Errorf("%w: price %s: %v", domain.ErrInvalidVehicle, v.PricePerDay, err)
	}

	id := v.ID
	if id == 0 {
		if id, err = nextSequence(ctx, r.db, vehiclesCollection); err != nil {
			return nil, err
		}
	} else if err := raiseSequence(ctx, r.db, vehiclesCollection, id); err != nil {
		return nil, err
	}

	doc := mongoVehicle{
		ID:          id,
		Type:        string(v.Type),
		Brand:       v.Brand,
		Model:       v.Model,
		RegNumber:   v.RegNumber,
		PricePerDay: price,
		Available:   v.Available,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: id %d or reg_number %q already exists", domain.ErrInvalidVehicle, id, v.RegNumber)
		}
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}

	stored := *v
	stored.ID = id
	return &stored, nil
}

func (mv mongoVehicle) toDomain() (*domain.Vehicle, error) {
	price, err := decimal.NewFromString(mv.PricePerDay.String())
	if err != nil {
		return nil, fmt.Errorf("vehicle %d price: %w", mv.ID, err)
	}
	return &domain.Vehicle{
		ID:          mv.ID,
		Type:        domain.VehicleType(mv.Type),
		Brand:       mv.Brand,
		Model:       mv.Model,
		RegNumber:   mv.RegNumber,
		PricePerDay: price,
		Available:   mv.Available,
	}, nil
}
