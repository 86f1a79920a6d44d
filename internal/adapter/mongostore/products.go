package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ port.ProductsRepository = (*ProductsRepository)(nil)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Code        string             `bson:"code"`
	Price       float64            `bson:"price"`
	Stock       int                `bson:"stock"`
	Category    string             `bson:"category"`
	Thumbnails  []string           `bson:"thumbnails"`
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ProductID:   d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Code:        d.Code,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    d.Category,
		Thumbnails:  d.Thumbnails,
	}
}

type ProductsRepository struct {
	col *mongo.Collection
}

func NewProductsRepository(s DocumentStore) ProductsRepository {
	return ProductsRepository{s.db.Collection(productsCollection)}
}

// Query translates catalog filter, sort and page parameters into a
// store query. TotalCount is computed from the filter alone, so
// callers can derive the page count no matter which page they
// requested. Read-only.
func (r ProductsRepository) Query(
	ctx context.Context,
	filter domain.CatalogFilter,
	sort domain.SortOrder,
	page domain.CatalogPage,
) ([]domain.Product, int, error) {
	const op = "ProductsRepository.Query"

	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	page = page.Normalize()
	match := makeMatch(filter)

	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	opts := options.Find().
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.PageSize))
	switch sort {
	case domain.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case domain.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cur, err := r.col.Find(ctx, match, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, int(total), nil
}

func makeMatch(filter domain.CatalogFilter) bson.M {
	match := bson.M{}
	if filter.Category != "" {
		match["category"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.Category),
			Options: "i",
		}
	}
	if filter.Available != nil {
		if *filter.Available {
			match["stock"] = bson.M{"$gt": 0}
		} else {
			match["stock"] = 0
		}
	}
	return match
}

func (r ProductsRepository) Read(
	ctx context.Context, productID string,
) (domain.Product, error) {
	const op = "ProductsRepository.Read"

	oid, err := parseID(productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc productDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, fmt.Errorf(
				"%s: product %q: %w", op, productID, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toDomain(), nil
}

func (r ProductsRepository) Create(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "ProductsRepository.Create"

	doc := productDoc{
		Title:       p.Title,
		Description: p.Description,
		Code:        p.Code,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Thumbnails:  p.Thumbnails,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Product{}, fmt.Errorf(
				"%s: product code %q: %w", op, p.Code, domain.ErrConflict)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r ProductsRepository) Update(
	ctx context.Context, productID string, patch port.ProductPatch,
) (domain.Product, error) {
	const op = "ProductsRepository.Update"

	oid, err := parseID(productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Thumbnails != nil {
		set["thumbnails"] = patch.Thumbnails
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err = r.col.FindOneAndUpdate(
		ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, fmt.Errorf(
				"%s: product %q: %w", op, productID, domain.ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.Product{}, fmt.Errorf(
				"%s: product code: %w", op, domain.ErrConflict)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toDomain(), nil
}

func (r ProductsRepository) Delete(
	ctx context.Context, productID string,
) error {
	const op = "ProductsRepository.Delete"

	oid, err := parseID(productID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: product %q: %w", op, productID, domain.ErrNotFound)
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf(
			"%w: malformed identifier %q", domain.ErrInvalidArgument, id)
	}
	return oid, nil
}
