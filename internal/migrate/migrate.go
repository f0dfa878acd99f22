package migrate

import (
	"context"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateSequences        bool // order / sale numbering
	CreateChecks           bool // CHECK constraints
	CreateIndexes          bool // indexes and UNIQUE
	CreateFKsViaSQL        bool // FKs via Exec after AutoMigrate
	CreateUpdatedAtTrigger bool
	CreateLedgerGuards     bool // reject UPDATE/DELETE on append-only tables
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateSequences:        true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
		CreateLedgerGuards:     true,
	}
}

type step struct {
	name string
	sql  string
}

func run(ctx context.Context, db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.WithContext(ctx).Exec(s.sql).Error; err != nil {
			log.Error("migration step failed", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}

func MigrateReparoDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting workshop database migration")

	if opt.CreateExtensions {
		log.Info("creating PostgreSQL extensions")
		if err := run(ctx, db, log, []step{
			{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
		}); err != nil {
			return err
		}
		log.Info("extensions created")
	}

	log.Info("creating tables")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.StockMovement{},
		&models.RepairOrder{},
		&models.OrderHistory{},
		&models.OrderPart{},
		&models.Sale{},
		&models.SaleLine{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}
	log.Info("tables created")

	if opt.CreateSequences {
		log.Info("creating numbering sequences")
		if err := run(ctx, db, log, []step{
			{"seq repair_order_number", `CREATE SEQUENCE IF NOT EXISTS repair_order_number_seq START 1`},
			{"seq sale_number", `CREATE SEQUENCE IF NOT EXISTS sale_number_seq START 1`},
		}); err != nil {
			return err
		}
		log.Info("sequences created")
	}

	if opt.CreateUpdatedAtTrigger {
		log.Info("creating updated_at triggers")
		if err := run(ctx, db, log, []step{{"triggers updated_at", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_repair_orders_updated ON repair_orders;
CREATE TRIGGER trg_repair_orders_updated BEFORE UPDATE ON repair_orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_purchase_orders_updated ON purchase_orders;
CREATE TRIGGER trg_purchase_orders_updated BEFORE UPDATE ON purchase_orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`}}); err != nil {
			return err
		}
		log.Info("triggers created")
	}

	if opt.CreateLedgerGuards {
		log.Info("creating append-only guards")
		if err := run(ctx, db, log, []step{{"append-only guards", `
CREATE OR REPLACE FUNCTION reject_ledger_rewrite() RETURNS trigger AS $$
BEGIN RAISE EXCEPTION '% is append-only', TG_TABLE_NAME; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_stock_movements_append_only ON stock_movements;
CREATE TRIGGER trg_stock_movements_append_only BEFORE UPDATE OR DELETE ON stock_movements
FOR EACH ROW EXECUTE FUNCTION reject_ledger_rewrite();

DROP TRIGGER IF EXISTS trg_order_histories_append_only ON order_histories;
CREATE TRIGGER trg_order_histories_append_only BEFORE UPDATE OR DELETE ON order_histories
FOR EACH ROW EXECUTE FUNCTION reject_ledger_rewrite();
`}}); err != nil {
			return err
		}
		log.Info("append-only guards created")
	}

	if opt.CreateChecks {
		log.Info("creating CHECK constraints")
		if err := run(ctx, db, log, []step{
			{"chk products stock", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative,
	ADD CONSTRAINT chk_products_stock_non_negative
	CHECK (current_stock >= 0 AND minimum_stock >= 0);`},
			{"chk products prices", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_prices_non_negative,
	ADD CONSTRAINT chk_products_prices_non_negative
	CHECK (purchase_price >= 0 AND sale_price >= 0);`},
			{"chk products status", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_status_allowed,
	ADD CONSTRAINT chk_products_status_allowed
	CHECK (status IN ('active','inactive','discontinued'));`},
			{"chk movements arithmetic", `
ALTER TABLE stock_movements
	DROP CONSTRAINT IF EXISTS chk_stock_movements_running_total,
	ADD CONSTRAINT chk_stock_movements_running_total
	CHECK (quantity <> 0 AND stock_after = stock_before + quantity AND stock_after >= 0);`},
			{"chk movements type", `
ALTER TABLE stock_movements
	DROP CONSTRAINT IF EXISTS chk_stock_movements_type_sign,
	ADD CONSTRAINT chk_stock_movements_type_sign
	CHECK (
		(movement_type = 'out' AND quantity < 0) OR
		(movement_type IN ('in','return') AND quantity > 0) OR
		(movement_type = 'adjustment')
	);`},
			{"chk orders status", `
ALTER TABLE repair_orders
	DROP CONSTRAINT IF EXISTS chk_repair_orders_status_allowed,
	ADD CONSTRAINT chk_repair_orders_status_allowed
	CHECK (status IN ('received','diagnosing','waiting_parts','repairing','repaired',
		'unrepairable','waiting_customer','delivered','cancelled'));`},
			{"chk orders priority", `
ALTER TABLE repair_orders
	DROP CONSTRAINT IF EXISTS chk_repair_orders_priority_allowed,
	ADD CONSTRAINT chk_repair_orders_priority_allowed
	CHECK (priority IN ('low','normal','high','urgent'));`},
			{"chk orders costs", `
ALTER TABLE repair_orders
	DROP CONSTRAINT IF EXISTS chk_repair_orders_costs_non_negative,
	ADD CONSTRAINT chk_repair_orders_costs_non_negative
	CHECK (diagnosis_cost >= 0 AND repair_cost >= 0 AND total_cost >= 0 AND advance_payment >= 0);`},
			{"chk order parts", `
ALTER TABLE order_parts
	DROP CONSTRAINT IF EXISTS chk_order_parts_quantity_gt_zero,
	ADD CONSTRAINT chk_order_parts_quantity_gt_zero
	CHECK (quantity > 0 AND unit_price >= 0 AND total_price >= 0);`},
			{"chk sale lines", `
ALTER TABLE sale_lines
	DROP CONSTRAINT IF EXISTS chk_sale_lines_quantity_gt_zero,
	ADD CONSTRAINT chk_sale_lines_quantity_gt_zero
	CHECK (quantity > 0 AND unit_price >= 0);`},
			{"chk purchase lines", `
ALTER TABLE purchase_order_lines
	DROP CONSTRAINT IF EXISTS chk_purchase_order_lines_received,
	ADD CONSTRAINT chk_purchase_order_lines_received
	CHECK (quantity_ordered > 0 AND quantity_received >= 0 AND quantity_received <= quantity_ordered);`},
			{"chk purchase status", `
ALTER TABLE purchase_orders
	DROP CONSTRAINT IF EXISTS chk_purchase_orders_status_allowed,
	ADD CONSTRAINT chk_purchase_orders_status_allowed
	CHECK (status IN ('pending','partial','received','cancelled'));`},
		}); err != nil {
			return err
		}
		log.Info("CHECK constraints created")
	}

	if opt.CreateIndexes {
		log.Info("creating indexes and uniques")
		if err := run(ctx, db, log, []step{
			{"ux products sku", `CREATE UNIQUE INDEX IF NOT EXISTS ux_products_sku ON products (lower(sku));`},
			{"ux order parts", `CREATE UNIQUE INDEX IF NOT EXISTS ux_order_parts_order_product ON order_parts (repair_order_id, product_id);`},
			{"ux purchase lines", `CREATE UNIQUE INDEX IF NOT EXISTS ux_purchase_order_lines_po_product ON purchase_order_lines (purchase_order_id, product_id);`},
			{"ix movements product seq", `CREATE INDEX IF NOT EXISTS ix_stock_movements_product_seq ON stock_movements (product_id, sequence);`},
			{"ix history order seq", `CREATE INDEX IF NOT EXISTS ix_order_histories_order_seq ON order_histories (repair_order_id, sequence);`},
			{"ix orders status created", `CREATE INDEX IF NOT EXISTS ix_repair_orders_status_created ON repair_orders (status, created_at DESC);`},
		}); err != nil {
			return err
		}
		log.Info("indexes created")
	}

	if opt.CreateFKsViaSQL {
		log.Info("creating foreign keys")
		if err := run(ctx, db, log, []step{
			{"fk movements product", `
ALTER TABLE stock_movements
  DROP CONSTRAINT IF EXISTS fk_stock_movements_product,
  ADD CONSTRAINT fk_stock_movements_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`},
			{"fk movements order", `
ALTER TABLE stock_movements
  DROP CONSTRAINT IF EXISTS fk_stock_movements_repair_order,
  ADD CONSTRAINT fk_stock_movements_repair_order
    FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE RESTRICT;`},
			{"fk history order", `
ALTER TABLE order_histories
  DROP CONSTRAINT IF EXISTS fk_order_histories_order,
  ADD CONSTRAINT fk_order_histories_order
    FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE RESTRICT;`},
			{"fk parts order", `
ALTER TABLE order_parts
  DROP CONSTRAINT IF EXISTS fk_order_parts_order,
  ADD CONSTRAINT fk_order_parts_order
    FOREIGN KEY (repair_order_id) REFERENCES repair_orders(id) ON DELETE CASCADE;`},
			{"fk parts product", `
ALTER TABLE order_parts
  DROP CONSTRAINT IF EXISTS fk_order_parts_product,
  ADD CONSTRAINT fk_order_parts_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`},
			{"fk sale lines sale", `
ALTER TABLE sale_lines
  DROP CONSTRAINT IF EXISTS fk_sale_lines_sale,
  ADD CONSTRAINT fk_sale_lines_sale
    FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE;`},
			{"fk sale lines product", `
ALTER TABLE sale_lines
  DROP CONSTRAINT IF EXISTS fk_sale_lines_product,
  ADD CONSTRAINT fk_sale_lines_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`},
			{"fk purchase lines po", `
ALTER TABLE purchase_order_lines
  DROP CONSTRAINT IF EXISTS fk_purchase_order_lines_po,
  ADD CONSTRAINT fk_purchase_order_lines_po
    FOREIGN KEY (purchase_order_id) REFERENCES purchase_orders(id) ON DELETE CASCADE;`},
			{"fk purchase lines product", `
ALTER TABLE purchase_order_lines
  DROP CONSTRAINT IF EXISTS fk_purchase_order_lines_product,
  ADD CONSTRAINT fk_purchase_order_lines_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`},
		}); err != nil {
			return err
		}
		log.Info("foreign keys created")
	}

	log.Info("workshop database migration completed")
	return nil
}
