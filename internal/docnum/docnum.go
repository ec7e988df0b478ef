// Package docnum derives human-readable document codes from durable numeric
// identifiers. Codes are deterministic and collision-free because the
// identifier is assigned by the database before the code is computed.
package docnum

import "fmt"

const (
	PrefixSale    = "F"
	PrefixProduct = "P"
)

// Format zero-pads id to five digits under the given prefix, e.g. F-00001.
// Identifiers beyond 99999 widen naturally instead of wrapping.
func Format(prefix string, id uint) string {
	return fmt.Sprintf("%s-%05d", prefix, id)
}

// Sale returns the invoice code for a sale id.
func Sale(id uint) string { return Format(PrefixSale, id) }

// Product returns the generated catalog code for a product id.
func Product(id uint) string { return Format(PrefixProduct, id) }
