package models

// All lists every persisted model, in dependency order, for sqlite auto-migration.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Product{},
		&Order{},
		&OrderLineItem{},
		&StockEntry{},
		&StockEntryItem{},
		&OutboxEvent{},
	}
}
