package repositories

import "gorm.io/gorm"

// Store bundles every repository over one *gorm.DB handle. Services receive
// a Store instead of raw ORM state so multi-step operations can run against
// transaction-scoped repositories.
type Store struct {
	db *gorm.DB

	Menu          MenuRepositoryInterface
	Orders        OrderRepositoryInterface
	Users         UserRepositoryInterface
	Announcements AnnouncementRepositoryInterface
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Menu:          NewMenuRepository(db),
		Orders:        NewOrderRepository(db),
		Users:         NewUserRepository(db),
		Announcements: NewAnnouncementRepository(db),
	}
}

// InTransaction runs fn against a Store bound to a single database
// transaction. Returning an error rolls back everything fn did; nested calls
// become savepoints.
func (s *Store) InTransaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(txdb *gorm.DB) error {
		return fn(NewStore(txdb))
	})
}
