package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jask/legalhub/internal/database/repository"
)

// DemoClients are the sample clients loaded by SeedDemo.
var DemoClients = []repository.Client{
	{FullName: "Demo Client One", Email: "demo.one@example.com", Phone: "555-0101"},
	{FullName: "Demo Client Two", Email: "demo.two@example.com", Phone: "555-0102"},
}

// SeedDemo inserts any DemoClients whose email is not taken yet. It is
// idempotent and safe to run on every startup.
func SeedDemo(ctx context.Context, db *sql.DB, createdBy string) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := repository.NewClientRepo(tx)
		base := Now().Add(-time.Duration(len(DemoClients)) * time.Minute)
		for i, c := range DemoClients {
			existing, err := repo.ByEmail(ctx, c.Email)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			c.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("client:"+c.Email)).String()
			c.CreatedBy = createdBy
			c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := repo.Insert(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}
