package schema

const ChangeEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "shop",
	"name": "change_event",
	"fields": [
		{"name": "kind", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "product", "type": ["null", {
			"type": "record",
			"name": "product",
			"fields": [
				{"name": "id", "type": "string"},
				{"name": "title", "type": "string"},
				{"name": "description", "type": "string"},
				{"name": "code", "type": "string"},
				{"name": "price", "type": "double"},
				{"name": "stock", "type": "long"},
				{"name": "category", "type": "string"},
				{"name": "thumbnails", "type": {"type": "array", "items": "string"}}
			]
		}], "default": null},
		{"name": "cart", "type": ["null", {
			"type": "record",
			"name": "cart",
			"fields": [
				{"name": "id", "type": "string"},
				{"name": "items", "type": {"type": "array", "items": {
					"type": "record",
					"name": "cart_item",
					"fields": [
						{"name": "product_id", "type": "string"},
						{"name": "quantity", "type": "long"}
					]
				}}}
			]
		}], "default": null}
	]
}`

type (
	ChangeEventV1 struct {
		Kind      string     `avro:"kind"`
		ProductID string     `avro:"product_id"`
		Product   *ProductV1 `avro:"product"`
		Cart      *CartV1    `avro:"cart"`
	}

	ProductV1 struct {
		ID          string   `avro:"id"`
		Title       string   `avro:"title"`
		Description string   `avro:"description"`
		Code        string   `avro:"code"`
		Price       float64  `avro:"price"`
		Stock       int      `avro:"stock"`
		Category    string   `avro:"category"`
		Thumbnails  []string `avro:"thumbnails"`
	}

	CartV1 struct {
		ID    string       `avro:"id"`
		Items []CartItemV1 `avro:"items"`
	}

	CartItemV1 struct {
		ProductID string `avro:"product_id"`
		Quantity  int    `avro:"quantity"`
	}
)
