// Package entdriver
package entdriver

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/storage"
	"github.com/papercomputeco/shelf/pkg/storage/ent/migrate"
)

var productColumns = []string{
	"id", "name", "description", "brand", "price", "category", "release_date",
	"product_available", "stock_quantity", "image_name", "image_type", "image_data",
}

var orderColumns = []string{
	"id", "order_id", "customer_name", "email", "status", "order_date",
}

var orderItemColumns = []string{
	"id", "order_ref", "product_id", "product_name", "quantity", "total_price",
}

// EntDriver provides storage operations on ent's SQL driver and query
// builder. It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	// DB is the ent SQL driver that owns the connection pool.
	DB *entsql.Driver

	// conn is DB outside of a transaction and the open transaction inside InTx.
	conn dialect.ExecQuerier
	inTx bool
}

// New wraps drv. The schema is expected to be migrated already.
func New(drv *entsql.Driver) *EntDriver {
	return &EntDriver{DB: drv, conn: drv}
}

// Open wraps drv and runs the schema migration.
func Open(ctx context.Context, drv *entsql.Driver) (*EntDriver, error) {
	if err := migrate.Create(ctx, drv); err != nil {
		return nil, err
	}
	return New(drv), nil
}

func (ed *EntDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(ed.DB.Dialect())
}

// ListProducts returns every product ordered by ID.
func (ed *EntDriver) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	b := ed.builder()
	query, args := b.Select(productColumns...).
		From(b.Table(migrate.ProductsTable.Name)).
		OrderBy("id").
		Query()

	products, err := ed.queryProducts(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by its ID.
func (ed *EntDriver) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	b := ed.builder()
	query, args := b.Select(productColumns...).
		From(b.Table(migrate.ProductsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	products, err := ed.queryProducts(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if len(products) == 0 {
		return nil, storage.ProductNotFound(id)
	}

	return products[0], nil
}

// SaveProduct inserts the product when its ID is zero and updates it otherwise.
func (ed *EntDriver) SaveProduct(ctx context.Context, p *catalog.Product) error {
	if p == nil {
		return errors.New("cannot store nil product")
	}

	if p.ID == 0 {
		return ed.insertProduct(ctx, p)
	}

	query, args := ed.builder().Update(migrate.ProductsTable.Name).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("brand", p.Brand).
		Set("price", p.Price).
		Set("category", p.Category).
		Set("release_date", p.ReleaseDate).
		Set("product_available", p.ProductAvailable).
		Set("stock_quantity", p.StockQuantity).
		Set("image_name", nullString(p.ImageName)).
		Set("image_type", nullString(p.ImageType)).
		Set("image_data", p.ImageData).
		Where(entsql.EQ("id", p.ID)).
		Query()

	var res stdsql.Result
	if err := ed.conn.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ProductNotFound(p.ID)
	}

	return nil
}

func (ed *EntDriver) insertProduct(ctx context.Context, p *catalog.Product) error {
	insert := ed.builder().Insert(migrate.ProductsTable.Name).
		Columns(productColumns[1:]...).
		Values(
			p.Name, p.Description, p.Brand, p.Price, p.Category, p.ReleaseDate,
			p.ProductAvailable, p.StockQuantity,
			nullString(p.ImageName), nullString(p.ImageType), p.ImageData,
		)

	id, err := ed.insert(ctx, insert)
	if err != nil {
		return fmt.Errorf("could not execute product creation: %w", err)
	}

	p.ID = id
	return nil
}

// DeleteProduct removes a product by its ID.
func (ed *EntDriver) DeleteProduct(ctx context.Context, id int64) error {
	query, args := ed.builder().Delete(migrate.ProductsTable.Name).
		Where(entsql.EQ("id", id)).
		Query()

	var res stdsql.Result
	if err := ed.conn.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ProductNotFound(id)
	}

	return nil
}

// SearchProducts returns products whose text fields contain keyword, ignoring case.
func (ed *EntDriver) SearchProducts(ctx context.Context, keyword string) ([]*catalog.Product, error) {
	b := ed.builder()
	query, args := b.Select(productColumns...).
		From(b.Table(migrate.ProductsTable.Name)).
		Where(entsql.Or(
			entsql.ContainsFold("name", keyword),
			entsql.ContainsFold("description", keyword),
			entsql.ContainsFold("brand", keyword),
			entsql.ContainsFold("category", keyword),
		)).
		OrderBy("id").
		Query()

	products, err := ed.queryProducts(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// ListOrders returns every order with its items, ordered by ID.
func (ed *EntDriver) ListOrders(ctx context.Context) ([]*catalog.Order, error) {
	b := ed.builder()
	query, args := b.Select(orderColumns...).
		From(b.Table(migrate.OrdersTable.Name)).
		OrderBy("id").
		Query()

	orders, err := ed.queryOrders(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if err := ed.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrder retrieves an order by its public order ID.
func (ed *EntDriver) GetOrder(ctx context.Context, orderID string) (*catalog.Order, error) {
	b := ed.builder()
	query, args := b.Select(orderColumns...).
		From(b.Table(migrate.OrdersTable.Name)).
		Where(entsql.EQ("order_id", orderID)).
		Query()

	orders, err := ed.queryOrders(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if len(orders) == 0 {
		return nil, storage.OrderNotFound(orderID)
	}
	if err := ed.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders[0], nil
}

// SaveOrder persists a new order and its items. When called outside of
// InTx the order and its items are written in their own transaction.
func (ed *EntDriver) SaveOrder(ctx context.Context, o *catalog.Order) error {
	if o == nil {
		return errors.New("cannot store nil order")
	}

	return ed.InTx(ctx, func(tx storage.Driver) error {
		return tx.(*EntDriver).saveOrder(ctx, o)
	})
}

func (ed *EntDriver) saveOrder(ctx context.Context, o *catalog.Order) error {
	insert := ed.builder().Insert(migrate.OrdersTable.Name).
		Columns(orderColumns[1:]...).
		Values(o.OrderID, o.CustomerName, o.Email, o.Status, o.OrderDate)

	id, err := ed.insert(ctx, insert)
	if err != nil {
		return fmt.Errorf("could not execute order creation: %w", err)
	}
	o.ID = id

	for i := range o.Items {
		item := &o.Items[i]
		insert := ed.builder().Insert(migrate.OrderItemsTable.Name).
			Columns(orderItemColumns[1:]...).
			Values(o.ID, item.ProductID, item.ProductName, item.Quantity, item.TotalPrice)

		itemID, err := ed.insert(ctx, insert)
		if err != nil {
			return fmt.Errorf("could not execute order item creation: %w", err)
		}
		item.ID = itemID
	}

	return nil
}

// InTx runs fn inside a database transaction. Nested calls join the
// outer transaction.
func (ed *EntDriver) InTx(ctx context.Context, fn func(tx storage.Driver) error) error {
	if ed.inTx {
		return fn(ed)
	}

	tx, err := ed.DB.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txDriver := &EntDriver{DB: ed.DB, conn: tx, inTx: true}
	if err := fn(txDriver); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rerr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (ed *EntDriver) Close() error {
	return ed.DB.Close()
}

// insert executes an insert statement and returns the generated ID.
// PostgreSQL reports it through RETURNING, SQLite through LastInsertId.
func (ed *EntDriver) insert(ctx context.Context, insert *entsql.InsertBuilder) (int64, error) {
	if ed.DB.Dialect() == dialect.Postgres {
		query, args := insert.Returning("id").Query()

		var rows entsql.Rows
		if err := ed.conn.Query(ctx, query, args, &rows); err != nil {
			return 0, err
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}
			return 0, errors.New("insert returned no id")
		}

		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, rows.Err()
	}

	query, args := insert.Query()

	var res stdsql.Result
	if err := ed.conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (ed *EntDriver) queryProducts(ctx context.Context, query string, args []any) ([]*catalog.Product, error) {
	var rows entsql.Rows
	if err := ed.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*catalog.Product{}
	for rows.Next() {
		var (
			p         catalog.Product
			imageName stdsql.NullString
			imageType stdsql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Brand, &p.Price, &p.Category,
			&p.ReleaseDate, &p.ProductAvailable, &p.StockQuantity,
			&imageName, &imageType, &p.ImageData,
		); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.ImageName = imageName.String
		p.ImageType = imageType.String
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (ed *EntDriver) queryOrders(ctx context.Context, query string, args []any) ([]*catalog.Order, error) {
	var rows entsql.Rows
	if err := ed.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*catalog.Order{}
	for rows.Next() {
		o := &catalog.Order{Items: []catalog.OrderItem{}}
		if err := rows.Scan(&o.ID, &o.OrderID, &o.CustomerName, &o.Email, &o.Status, &o.OrderDate); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// loadItems attaches items to orders with a single query.
func (ed *EntDriver) loadItems(ctx context.Context, orders []*catalog.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*catalog.Order, len(orders))
	ids := make([]any, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	b := ed.builder()
	query, args := b.Select(orderItemColumns...).
		From(b.Table(migrate.OrderItemsTable.Name)).
		Where(entsql.In("order_ref", ids...)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := ed.conn.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     catalog.OrderItem
			orderRef int64
		)
		if err := rows.Scan(&item.ID, &orderRef, &item.ProductID, &item.ProductName, &item.Quantity, &item.TotalPrice); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if o, ok := byID[orderRef]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}

func nullString(s string) stdsql.NullString {
	return stdsql.NullString{String: s, Valid: s != ""}
}
