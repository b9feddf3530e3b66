package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/luizgft/produtos-api/internal/platform/db"
	"github.com/luizgft/produtos-api/internal/platform/httpx"
)

// Repository is the storage gateway for products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	// FindByID reports ok=false when no row has the given id.
	FindByID(ctx context.Context, id int64) (Product, bool, error)
	// Save inserts when p.ID is nil and upserts otherwise.
	Save(ctx context.Context, p Product) (Product, error)
	// DeleteByID removes the row. Callers check existence first.
	DeleteByID(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Conn is satisfied by *pgxpool.Pool.
type Conn interface {
	dbtx
	db.TxBeginner
}

type pgRepository struct {
	conn Conn
}

// NewRepository returns the PostgreSQL storage gateway.
func NewRepository(conn Conn) Repository {
	return &pgRepository{conn: conn}
}

const productColumns = `id, name, description, price, quantity, created_at, updated_at`

const (
	listProductsSQL = `SELECT ` + productColumns + ` FROM produtos ORDER BY id`

	getProductSQL = `SELECT ` + productColumns + ` FROM produtos WHERE id = $1`

	insertProductSQL = `INSERT INTO produtos (name, description, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	upsertProductSQL = `INSERT INTO produtos (id, name, description, price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			updated_at = now()
		RETURNING id, created_at, updated_at`

	// Explicit ids bypass the sequence; move it past them.
	syncSequenceSQL = `SELECT setval(pg_get_serial_sequence('produtos', 'id'),
		GREATEST((SELECT COALESCE(MAX(id), 0) FROM produtos), 1))`

	deleteProductSQL = `DELETE FROM produtos WHERE id = $1`
)

func (r *pgRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.conn.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("products: list scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products: list rows: %w", err)
	}
	return out, nil
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (Product, bool, error) {
	p, err := scanProduct(r.conn.QueryRow(ctx, getProductSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, false, nil
		}
		return Product{}, false, fmt.Errorf("products: get %d: %w", id, err)
	}
	return p, true, nil
}

func (r *pgRepository) Save(ctx context.Context, p Product) (Product, error) {
	if !p.Persisted() {
		var id int64
		err := r.conn.QueryRow(ctx, insertProductSQL, p.Name, p.Description, p.Price, p.Quantity).
			Scan(&id, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return Product{}, fmt.Errorf("products: insert: %w", mapPgError(err))
		}
		p.ID = &id
		return p, nil
	}

	err := db.WithTx(ctx, r.conn, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, upsertProductSQL, *p.ID, p.Name, p.Description, p.Price, p.Quantity).
			Scan(&id, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return mapPgError(err)
		}
		if _, err := tx.Exec(ctx, syncSequenceSQL); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("products: upsert %d: %w", *p.ID, err)
	}
	return p, nil
}

func (r *pgRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.conn.Exec(ctx, deleteProductSQL, id); err != nil {
		return fmt.Errorf("products: delete %d: %w", id, err)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p  Product
		id int64
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	p.ID = &id
	return p, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.Detail)
	case "22003": // numeric_value_out_of_range
		return fmt.Errorf("%w: %s", httpx.ErrValidation, pgErr.Message)
	}
	return err
}
