package repos

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/errs"
	applog "fieldbasket/internal/log"
)

const productsCollection = "products"

// ConnectToMongoDB connects and pings before handing out the database.
func ConnectToMongoDB(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(dbName), nil
}

type MongoProductRepo struct {
	db *mongo.Database
}

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{db: db}
}

// productDoc is the stored shape. Documents may carry their own "id" field or
// rely on the ObjectID; either way callers only ever see Product.ID.
type productDoc struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id,omitempty"`
	Name        string             `bson:"name"`
	Image       string             `bson:"image"`
	Price       float64            `bson:"price"`
	Unit        string             `bson:"unit"`
	Description string             `bson:"description"`
	Type        string             `bson:"type,omitempty"`
}

func (d productDoc) toDomain() domain.Product {
	id := d.ID
	if !d.ObjectID.IsZero() {
		id = d.ObjectID.Hex()
	}
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Image:       d.Image,
		Price:       d.Price,
		Unit:        d.Unit,
		Description: d.Description,
		Type:        d.Type,
	}
}

func mongoFilter(q domain.ProductQuery) bson.M {
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		return bson.M{"$or": bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}}
	}
	if q.Type != "" && q.Type != domain.TypeAll {
		return bson.M{"type": q.Type}
	}
	return bson.M{}
}

func (r *MongoProductRepo) Search(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error) {
	coll := r.db.Collection(productsCollection)
	filter := mongoFilter(q)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		applog.Error(nil, "mongo.products.count", err, nil)
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode documents: %w", err)
	}
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, int(total), nil
}

func (r *MongoProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	match := bson.A{bson.M{"id": id}}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		match = append(match, bson.M{"_id": oid})
	}

	var d productDoc
	err := r.db.Collection(productsCollection).FindOne(ctx, bson.M{"$or": match}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, errs.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return d.toDomain(), nil
}

// SeedIfEmpty inserts the embedded catalog into an empty collection.
func (r *MongoProductRepo) SeedIfEmpty(ctx context.Context) error {
	coll := r.db.Collection(productsCollection)
	n, err := coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	products, err := SeedCatalog()
	if err != nil {
		return err
	}
	docs := make([]any, 0, len(products))
	for _, p := range products {
		docs = append(docs, productDoc{
			ID: p.ID, Name: p.Name, Image: p.Image, Price: p.Price,
			Unit: p.Unit, Description: p.Description, Type: p.Type,
		})
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return err
	}
	applog.Info(nil, "seed.catalog", map[string]any{"products": len(docs), "backend": "mongo"})
	return nil
}
