package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate is an opaque filter forwarded to GORM. Any GORM scope of the
// same shape can be used directly.
type Predicate func(db *gorm.DB) *gorm.DB

// Where builds a Predicate from a GORM condition, e.g. Where("account = ?", "alice").
func Where(query any, args ...any) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// All matches every row. GORM refuses UPDATE and DELETE without a WHERE
// clause, so whole-table mutations of non-entity types must pass All.
func All() Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("1 = 1")
	}
}

// ByID matches the row whose primary key equals id.
func ByID(id any) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.PrimaryColumn, Value: id})
	}
}

// ByIDs matches rows whose primary key is in ids. An empty ids slice matches nothing.
func ByIDs[K comparable](ids []K) Predicate {
	values := lo.ToAnySlice(lo.Uniq(ids))
	return func(db *gorm.DB) *gorm.DB {
		if len(values) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(clause.IN{Column: clause.PrimaryColumn, Values: values})
	}
}

// And combines predicates; nil entries are skipped.
func And(preds ...Predicate) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range preds {
			if p != nil {
				db = p(db)
			}
		}
		return db
	}
}

// validIdentifier matches a column name with an optional table qualifier.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether s is safe to splice into SQL as a column or
// routine name.
func ValidIdentifier(s string) bool {
	return validIdentifier.MatchString(s)
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Asc orders by column ascending.
func Asc(column string) Order { return Order{Column: column} }

// Desc orders by column descending.
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// String renders the term as "column asc|desc".
func (o Order) String() string {
	if o.Desc {
		return o.Column + " desc"
	}
	return o.Column + " asc"
}

// ParseOrder parses a comma separated list such as "account desc, created_time".
// The direction defaults to ascending. Columns must be plain identifiers.
func ParseOrder(s string) ([]Order, error) {
	var orders []Order
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, strings.TrimSpace(part))
		}
		if !ValidIdentifier(fields[0]) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, fields[0])
		}
		o := Order{Column: fields[0]}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				o.Desc = true
			default:
				return nil, fmt.Errorf("%w: direction %q", ErrInvalidIdentifier, fields[1])
			}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func applyOrders(db *gorm.DB, orders []Order) (*gorm.DB, error) {
	for _, o := range orders {
		if !ValidIdentifier(o.Column) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, o.Column)
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	return db, nil
}
