package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/domain"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/ledger"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, COALESCE(legacy_id, '') AS legacy_id, name, education_level, unit_price, active, created_at`

const variantColumns = `id, item_id, size, beginning_inventory, purchases, released, returns,
	reorder_point, unit_price, period, period_started_at, updated_at`

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListReportRows(ctx context.Context, filter domain.ReportFilter) ([]domain.InventoryReportRow, error) {
	query := `
        SELECT
            i.id AS item_id, v.id AS variant_id, i.name, i.education_level, v.size,
            v.beginning_inventory, v.purchases, v.released, v.returns, v.reorder_point,
            COALESCE(v.unit_price, i.unit_price) AS unit_price, i.created_at
        FROM items i
        JOIN item_variants v ON v.item_id = i.id
        WHERE i.active = TRUE
    `

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.EducationLevel != "" {
		conditions = append(conditions, fmt.Sprintf("i.education_level = $%d", argCounter))
		args = append(args, string(filter.EducationLevel))
		argCounter++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("i.name ILIKE $%d", argCounter))
		args = append(args, "%"+search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY i.name, i.education_level, v.size"

	var rows []domain.InventoryReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error listing report rows: %w", err)
	}

	return rows, nil
}

func (r *inventoryRepository) ListSizes(ctx context.Context, name string, level domain.EducationLevel) ([]string, error) {
	query := `
        SELECT v.size
        FROM item_variants v
        JOIN items i ON i.id = v.item_id
        WHERE i.name = $1 AND i.education_level = $2 AND i.active = TRUE
        ORDER BY v.size
    `

	var sizes []string
	if err := r.db.SelectContext(ctx, &sizes, query, name, string(level)); err != nil {
		return nil, fmt.Errorf("error listing sizes: %w", err)
	}

	return sizes, nil
}

func (r *inventoryRepository) AddStock(ctx context.Context, in domain.AddStockInput) (domain.Item, domain.SizeVariant, error) {
	var (
		item    domain.Item
		updated domain.SizeVariant
	)

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		item, err = getItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return domain.NewValidationError("item_id", fmt.Sprintf("item %d is inactive", in.ItemID))
		}

		variants, err := listVariants(ctx, tx, in.ItemID, false)
		if err != nil {
			return err
		}

		target, err := ledger.SelectVariant(in.ItemID, variants, in.Size)
		if err != nil {
			return err
		}

		var price interface{}
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}

		// increment in place so concurrent purchases never overwrite each other
		query := `
            UPDATE item_variants
            SET purchases = purchases + $1,
                unit_price = COALESCE($2, unit_price),
                updated_at = NOW()
            WHERE id = $3
            RETURNING ` + variantColumns

		if err := tx.GetContext(ctx, &updated, query, in.Quantity, price, target.ID); err != nil {
			return fmt.Errorf("error adding stock to variant %d: %w", target.ID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Item{}, domain.SizeVariant{}, err
	}

	return item, updated, nil
}

func (r *inventoryRepository) ResetBeginningInventory(ctx context.Context, in domain.ResetInput) (domain.Item, []repository.ResetResult, error) {
	var (
		item    domain.Item
		results []repository.ResetResult
	)

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		item, err = getItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return domain.NewValidationError("item_id", fmt.Sprintf("item %d is inactive", in.ItemID))
		}

		variants, err := listVariants(ctx, tx, in.ItemID, true)
		if err != nil {
			return err
		}

		targets, err := ledger.TargetVariants(in.ItemID, variants, in.Size)
		if err != nil {
			return err
		}

		results = make([]repository.ResetResult, 0, len(targets))
		for _, v := range targets {
			if !v.HasMovement() {
				results = append(results, repository.ResetResult{Variant: v})
				continue
			}

			rolled, err := closePeriod(ctx, tx, v)
			if err != nil {
				return err
			}
			results = append(results, repository.ResetResult{Variant: rolled, RolledOver: true})
		}
		return nil
	})
	if err != nil {
		return domain.Item{}, nil, err
	}

	return item, results, nil
}

// closePeriod snapshots the locked variant and opens the next period.
func closePeriod(ctx context.Context, tx *sqlx.Tx, v domain.SizeVariant) (domain.SizeVariant, error) {
	ending := ledger.EndingInventory(v.Counters)

	snapshot := `
        INSERT INTO inventory_period_snapshots
            (variant_id, period, beginning_inventory, purchases, released, returns, ending_inventory, closed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
    `
	if _, err := tx.ExecContext(ctx, snapshot,
		v.ID, v.Period, v.BeginningInventory, v.Purchases, v.Released, v.Returns, ending,
	); err != nil {
		return domain.SizeVariant{}, fmt.Errorf("error writing period snapshot for variant %d: %w", v.ID, err)
	}

	next := ledger.Rollover(v.Counters)
	update := `
        UPDATE item_variants
        SET beginning_inventory = $1,
            purchases = $2,
            released = $3,
            returns = $4,
            period = period + 1,
            period_started_at = NOW(),
            updated_at = NOW()
        WHERE id = $5
        RETURNING ` + variantColumns

	var rolled domain.SizeVariant
	if err := tx.GetContext(ctx, &rolled, update,
		next.BeginningInventory, next.Purchases, next.Released, next.Returns, v.ID,
	); err != nil {
		return domain.SizeVariant{}, fmt.Errorf("error rolling over variant %d: %w", v.ID, err)
	}

	return rolled, nil
}

func (r *inventoryRepository) UpsertLegacyItem(ctx context.Context, item domain.LegacyItem, variants []ledger.ResolvedVariant) (int64, error) {
	var id int64

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO items (legacy_id, name, education_level, unit_price, active, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), NOW())
            ON CONFLICT (legacy_id)
            DO UPDATE SET
                name = EXCLUDED.name,
                education_level = EXCLUDED.education_level,
                unit_price = EXCLUDED.unit_price,
                active = EXCLUDED.active,
                updated_at = NOW()
            RETURNING id
        `
		var createdAt interface{}
		if !item.CreatedAt.IsZero() {
			createdAt = item.CreatedAt
		}
		if err := tx.QueryRowxContext(ctx, query,
			item.LegacyID, item.Name, string(item.EducationLevel), item.UnitPrice, item.Active, createdAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", item.LegacyID, err)
		}

		variantQuery := `
            INSERT INTO item_variants
                (item_id, size, beginning_inventory, purchases, released, returns, reorder_point, unit_price, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
            ON CONFLICT (item_id, size)
            DO UPDATE SET
                beginning_inventory = EXCLUDED.beginning_inventory,
                purchases = EXCLUDED.purchases,
                released = EXCLUDED.released,
                returns = EXCLUDED.returns,
                reorder_point = EXCLUDED.reorder_point,
                unit_price = EXCLUDED.unit_price,
                updated_at = NOW()
        `
		for _, v := range variants {
			if _, err := tx.ExecContext(ctx, variantQuery,
				id, v.Size, v.BeginningInventory, v.Purchases, v.Released, v.Returns, v.ReorderPoint, v.UnitPrice,
			); err != nil {
				return fmt.Errorf("failed to upsert variant %s/%s: %w", item.LegacyID, v.Size, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *inventoryRepository) ListPeriodSnapshots(ctx context.Context, variantID int64) ([]domain.PeriodSnapshot, error) {
	query := `
        SELECT id, variant_id, period, beginning_inventory, purchases, released, returns, ending_inventory, closed_at
        FROM inventory_period_snapshots
        WHERE variant_id = $1
        ORDER BY period
    `

	var snapshots []domain.PeriodSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, variantID); err != nil {
		return nil, fmt.Errorf("error listing period snapshots: %w", err)
	}
	return snapshots, nil
}

func getItem(ctx context.Context, tx *sqlx.Tx, id int64) (domain.Item, error) {
	var item domain.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if err := tx.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.NewNotFoundError("item", id)
		}
		return domain.Item{}, fmt.Errorf("error getting item %d: %w", id, err)
	}
	return item, nil
}

func listVariants(ctx context.Context, tx *sqlx.Tx, itemID int64, forUpdate bool) ([]domain.SizeVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM item_variants WHERE item_id = $1 ORDER BY size, id`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var variants []domain.SizeVariant
	if err := tx.SelectContext(ctx, &variants, query, itemID); err != nil {
		return nil, fmt.Errorf("error listing variants of item %d: %w", itemID, err)
	}
	return variants, nil
}
