// Package indexer keeps the vector store in step with the relational store.
//
// Every product and order mutation is mirrored as a text document whose
// metadata identifies the entity it came from. Mirroring is best effort: a
// failed sync is logged and never fails the mutation that triggered it.
package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/vector"
)

const productDocPrefix = "product-"

// ProductDocID returns the vector document ID of a product.
func ProductDocID(id int64) string {
	return productDocPrefix + strconv.FormatInt(id, 10)
}

// ProductDocument renders p as a searchable document.
func ProductDocument(p *catalog.Product) vector.Document {
	available := "No"
	if p.ProductAvailable {
		available = "Yes"
	}

	var b strings.Builder
	b.WriteString("Product Information:\n")
	fmt.Fprintf(&b, "Product ID: %d\n", p.ID)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Price: $%s\n", p.Price.StringFixed(2))
	fmt.Fprintf(&b, "Release Date: %s\n", p.ReleaseDate)
	fmt.Fprintf(&b, "Available: %s\n", available)
	fmt.Fprintf(&b, "Stock Quantity: %d\n", p.StockQuantity)
	fmt.Fprintf(&b, "Stock Status: %s\n", p.StockStatus())

	return vector.Document{
		ID:      ProductDocID(p.ID),
		Content: b.String(),
		Metadata: map[string]string{
			vector.MetaType:        vector.TypeProduct,
			vector.MetaProductID:   strconv.FormatInt(p.ID, 10),
			vector.MetaProductName: p.Name,
			vector.MetaCategory:    p.Category,
		},
	}
}

// OrderDocument renders o and its lines as a searchable document.
func OrderDocument(o *catalog.Order) vector.Document {
	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", o.OrderID)
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n", o.Email)
	fmt.Fprintf(&b, "Date: %s\n", o.OrderDate)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Total: $%s\n", o.Total().StringFixed(2))
	for _, item := range o.Items {
		fmt.Fprintf(&b, "Product: %s, Qty: %d, Total: $%s\n",
			item.ProductName, item.Quantity, item.TotalPrice.StringFixed(2))
	}

	return vector.Document{
		ID:      o.OrderID,
		Content: b.String(),
		Metadata: map[string]string{
			vector.MetaType:         vector.TypeOrder,
			vector.MetaOrderID:      o.OrderID,
			vector.MetaCustomerName: o.CustomerName,
			vector.MetaStatus:       o.Status,
		},
	}
}

func productFilter(id int64) vector.Filter {
	return vector.Filter{vector.MetaProductID: strconv.FormatInt(id, 10)}
}

func orderFilter(orderID string) vector.Filter {
	return vector.Filter{vector.MetaOrderID: orderID}
}
