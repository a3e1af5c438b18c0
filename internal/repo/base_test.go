package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID   int
	Name string
}

func TestTransactionRollsBackOnError(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, conn.AutoMigrate(&widget{}))

	base := NewBase(conn)
	ctx := context.Background()

	require.NoError(t, base.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	}))
	err := base.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "dropped"}).Error; err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var names []string
	require.NoError(t, base.DB(ctx).Model(&widget{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"kept"}, names)
}
