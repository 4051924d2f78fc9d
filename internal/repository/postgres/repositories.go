package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	TenantVersions *TenantVersionRepository
	Customers      *CustomerRepository
	WorkOrders     *WorkOrderRepository
	PartTypes      *PartTypeRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		TenantVersions: NewTenantVersionRepository(pool),
		Customers:      NewCustomerRepository(pool),
		WorkOrders:     NewWorkOrderRepository(pool),
		PartTypes:      NewPartTypeRepository(pool),
	}
}
