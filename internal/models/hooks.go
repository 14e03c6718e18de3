package models

import "gorm.io/gorm"

// Times are stored in UTC. sqlite keeps them as text and compares them as
// strings, so a row written with another offset than the query bounds
// would fall on the wrong side of a day boundary.

func (r *Receipt) BeforeSave(tx *gorm.DB) error {
	r.Date = r.Date.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return nil
}

func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.Date = p.Date.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return nil
}

func (e *Expense) BeforeSave(tx *gorm.DB) error {
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}

func (pt *PurchaseTransaction) BeforeSave(tx *gorm.DB) error {
	pt.CreatedAt = pt.CreatedAt.UTC()
	return nil
}

func (st *SupplyTransaction) BeforeSave(tx *gorm.DB) error {
	st.CreatedAt = st.CreatedAt.UTC()
	return nil
}
