package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/port"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ port.CartsRepository = (*CartsRepository)(nil)

type cartDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Items []cartItemDoc      `bson:"products"`
}

type cartItemDoc struct {
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
}

func (d cartDoc) toDomain() domain.Cart {
	c := domain.Cart{CartID: d.ID.Hex()}
	for _, it := range d.Items {
		c.Items = append(c.Items, domain.CartItem{
			ProductID: it.Product.Hex(),
			Quantity:  it.Quantity,
		})
	}
	return c
}

func toCartDoc(c domain.Cart) (cartDoc, error) {
	var doc cartDoc
	if c.CartID != "" {
		oid, err := parseID(c.CartID)
		if err != nil {
			return cartDoc{}, err
		}
		doc.ID = oid
	}
	for _, it := range c.Items {
		oid, err := parseID(it.ProductID)
		if err != nil {
			return cartDoc{}, err
		}
		doc.Items = append(doc.Items, cartItemDoc{
			Product:  oid,
			Quantity: it.Quantity,
		})
	}
	return doc, nil
}

type CartsRepository struct {
	col *mongo.Collection
}

func NewCartsRepository(s DocumentStore) CartsRepository {
	return CartsRepository{s.db.Collection(cartsCollection)}
}

func (r CartsRepository) Read(
	ctx context.Context, cartID string,
) (domain.Cart, error) {
	const op = "CartsRepository.Read"

	oid, err := parseID(cartID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc cartDoc
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Cart{}, fmt.Errorf(
				"%s: cart %q: %w", op, cartID, domain.ErrNotFound)
		}
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toDomain(), nil
}

func (r CartsRepository) Create(
	ctx context.Context, c domain.Cart,
) (domain.Cart, error) {
	const op = "CartsRepository.Create"

	doc, err := toCartDoc(c)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toDomain(), nil
}

func (r CartsRepository) Replace(ctx context.Context, c domain.Cart) error {
	const op = "CartsRepository.Replace"

	doc, err := toCartDoc(c)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: cart %q: %w", op, c.CartID, domain.ErrNotFound)
	}
	return nil
}
