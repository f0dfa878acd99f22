package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB             *gorm.DB
	Products       ProductRepo
	Movements      MovementRepo
	Orders         OrderRepo
	History        HistoryRepo
	Parts          PartRepo
	Sales          SaleRepo
	PurchaseOrders PurchaseOrderRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:             db,
		Products:       NewProductRepo(db),
		Movements:      NewMovementRepo(db),
		Orders:         NewOrderRepo(db),
		History:        NewHistoryRepo(db),
		Parts:          NewPartRepo(db),
		Sales:          NewSaleRepo(db),
		PurchaseOrders: NewPurchaseOrderRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against a copy of every repo bound to one transaction.
// Returning an error from fn rolls everything back.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
