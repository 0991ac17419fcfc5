// Package migrate holds the relational schema for shelf and applies it with
// ent's schema migrator.
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ProductsColumns holds the columns for the "products" table.
	ProductsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "brand", Type: field.TypeString, Default: ""},
		{Name: "price", Type: field.TypeFloat64, SchemaType: map[string]string{
			dialect.Postgres: "numeric(12,2)",
			dialect.SQLite:   "decimal(12,2)",
		}},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "release_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{
			dialect.Postgres: "date",
			dialect.SQLite:   "date",
		}},
		{Name: "product_available", Type: field.TypeBool, Default: false},
		{Name: "stock_quantity", Type: field.TypeInt, Default: 0},
		{Name: "image_name", Type: field.TypeString, Nullable: true},
		{Name: "image_type", Type: field.TypeString, Nullable: true},
		{Name: "image_data", Type: field.TypeBytes, Nullable: true},
	}
	// ProductsTable holds the schema information for the "products" table.
	ProductsTable = &schema.Table{
		Name:       "products",
		Columns:    ProductsColumns,
		PrimaryKey: []*schema.Column{ProductsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "product_category",
				Unique:  false,
				Columns: []*schema.Column{ProductsColumns[5]},
			},
		},
	}

	// OrdersColumns holds the columns for the "orders" table.
	OrdersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "order_id", Type: field.TypeString, Unique: true},
		{Name: "customer_name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "order_date", Type: field.TypeTime, SchemaType: map[string]string{
			dialect.Postgres: "date",
			dialect.SQLite:   "date",
		}},
	}
	// OrdersTable holds the schema information for the "orders" table.
	OrdersTable = &schema.Table{
		Name:       "orders",
		Columns:    OrdersColumns,
		PrimaryKey: []*schema.Column{OrdersColumns[0]},
	}

	// OrderItemsColumns holds the columns for the "order_items" table.
	// product_id carries no foreign key: order lines outlive their products.
	OrderItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "product_id", Type: field.TypeInt64},
		{Name: "product_name", Type: field.TypeString},
		{Name: "quantity", Type: field.TypeInt},
		{Name: "total_price", Type: field.TypeFloat64, SchemaType: map[string]string{
			dialect.Postgres: "numeric(12,2)",
			dialect.SQLite:   "decimal(12,2)",
		}},
		{Name: "order_ref", Type: field.TypeInt64},
	}
	// OrderItemsTable holds the schema information for the "order_items" table.
	OrderItemsTable = &schema.Table{
		Name:       "order_items",
		Columns:    OrderItemsColumns,
		PrimaryKey: []*schema.Column{OrderItemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "order_items_orders_items",
				Columns:    []*schema.Column{OrderItemsColumns[5]},
				RefColumns: []*schema.Column{OrdersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "orderitem_order_ref",
				Unique:  false,
				Columns: []*schema.Column{OrderItemsColumns[5]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProductsTable,
		OrdersTable,
		OrderItemsTable,
	}
)

func init() {
	OrderItemsTable.ForeignKeys[0].RefTable = OrdersTable
}

// Create runs the schema migration against drv. Migrations are append-only:
// new tables, columns and indexes are added, nothing is dropped.
func Create(ctx context.Context, drv dialect.Driver, opts ...schema.MigrateOption) error {
	m, err := schema.NewMigrate(drv, opts...)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
