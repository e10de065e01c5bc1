package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Deterministic ids so repeated boots in development stay idempotent.
var seedStatements = []string{
	`INSERT INTO profiles (id, role, first_name, last_name, profession, balance) VALUES
		('11111111-0000-0000-0000-000000000001', 'client', 'Harry', 'Potter', '', 1150.00),
		('11111111-0000-0000-0000-000000000002', 'client', 'Mr', 'Robot', '', 231.11),
		('11111111-0000-0000-0000-000000000003', 'client', 'John', 'Snow', '', 451.30),
		('22222222-0000-0000-0000-000000000001', 'contractor', 'John', 'Lenon', 'Musician', 64.00),
		('22222222-0000-0000-0000-000000000002', 'contractor', 'Linus', 'Torvalds', 'Programmer', 1214.00),
		('22222222-0000-0000-0000-000000000003', 'contractor', 'Alan', 'Turing', 'Programmer', 22.00),
		('33333333-0000-0000-0000-000000000001', 'admin', 'Ada', 'Lovelace', '', 0.00)
	ON CONFLICT (id) DO NOTHING;`,
	`INSERT INTO contracts (id, client_id, contractor_id, terms, status) VALUES
		('44444444-0000-0000-0000-000000000001', '11111111-0000-0000-0000-000000000001', '22222222-0000-0000-0000-000000000001', 'bla bla bla', 'terminated'),
		('44444444-0000-0000-0000-000000000002', '11111111-0000-0000-0000-000000000001', '22222222-0000-0000-0000-000000000002', 'bla bla bla', 'in_progress'),
		('44444444-0000-0000-0000-000000000003', '11111111-0000-0000-0000-000000000002', '22222222-0000-0000-0000-000000000003', 'bla bla bla', 'in_progress'),
		('44444444-0000-0000-0000-000000000004', '11111111-0000-0000-0000-000000000003', '22222222-0000-0000-0000-000000000002', 'bla bla bla', 'new')
	ON CONFLICT (id) DO NOTHING;`,
	`INSERT INTO jobs (id, contract_id, description, price, paid, payment_date) VALUES
		('55555555-0000-0000-0000-000000000001', '44444444-0000-0000-0000-000000000002', 'work', 201.00, FALSE, NULL),
		('55555555-0000-0000-0000-000000000002', '44444444-0000-0000-0000-000000000002', 'work', 202.00, TRUE, '2020-08-15T19:11:26Z'),
		('55555555-0000-0000-0000-000000000003', '44444444-0000-0000-0000-000000000003', 'work', 200.00, FALSE, NULL),
		('55555555-0000-0000-0000-000000000004', '44444444-0000-0000-0000-000000000003', 'work', 2020.00, TRUE, '2020-08-16T19:11:26Z'),
		('55555555-0000-0000-0000-000000000005', '44444444-0000-0000-0000-000000000004', 'work', 121.00, FALSE, NULL)
	ON CONFLICT (id) DO NOTHING;`,
}

func seedDev(db *gorm.DB) error {
	for i, stmt := range seedStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("seed statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
