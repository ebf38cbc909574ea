package repository

// Models lists every GORM model for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&EventModel{},
		&EventPromoModel{},
		&TicketModel{},
		&UserModel{},
	}
}
