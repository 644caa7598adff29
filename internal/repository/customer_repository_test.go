package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/tripdesk/internal/domain"
	"github.com/jbweber/homelab/tripdesk/internal/testutil"
)

func frodo() domain.Customer {
	return domain.Customer{
		FirstName: domain.Text("Frodo"),
		LastName:  domain.Text("Baggins"),
		Address:   domain.Text("Legnicka"),
		Trip:      domain.Text("Liverpool"),
	}
}

func TestCustomerRepository_Save(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_Save")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Frodo", domain.Value(saved.FirstName))
	assert.Equal(t, "Baggins", domain.Value(saved.LastName))

	second, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, second.ID, "identities must be unique")
}

func TestCustomerRepository_Save_Update(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_Save_Update")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, frodo())
	require.NoError(t, err)

	// Full replacement clears fields that are not set
	replacement := domain.Customer{ID: saved.ID, FirstName: domain.Text("Bilbo"), LastName: domain.Text("Baggins")}
	_, err = repo.Save(ctx, replacement)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bilbo", domain.Value(found.FirstName))
	assert.Equal(t, "Baggins", domain.Value(found.LastName))
	assert.Nil(t, found.Address)
	assert.Nil(t, found.Trip)

	// Updating a customer that doesn't exist
	_, err = repo.Save(ctx, domain.Customer{ID: 99999, FirstName: domain.Text("Nobody")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_Create_WithID(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_Create_WithID")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	created, err := repo.Create(ctx, frodo().WithID(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)

	_, err = repo.Create(ctx, frodo().WithID(42))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.Create(ctx, frodo().WithID(-1))
	assert.ErrorIs(t, err, ErrInvalidEntity)

	// Generated identities continue after the assigned one
	next, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	assert.Greater(t, next.ID, int64(42))
}

func TestCustomerRepository_FindByID(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_FindByID")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, frodo())
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	_, err = repo.FindByID(ctx, 99999)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_FindAll(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_FindAll")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	first, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	second, err := repo.Save(ctx, domain.Customer{FirstName: domain.Text("Sam")})
	require.NoError(t, err)

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Nil(t, all[1].LastName)
}

func TestCustomerRepository_FindByLastName(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_FindByLastName")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	_, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	_, err = repo.Save(ctx, domain.Customer{FirstName: domain.Text("Bilbo"), LastName: domain.Text("Baggins")})
	require.NoError(t, err)
	_, err = repo.Save(ctx, domain.Customer{FirstName: domain.Text("Sam"), LastName: domain.Text("Gamgee")})
	require.NoError(t, err)
	_, err = repo.Save(ctx, domain.Customer{FirstName: domain.Text("Gollum")})
	require.NoError(t, err)

	bagginses, err := repo.FindByLastName(ctx, domain.Text("Baggins"))
	require.NoError(t, err)
	require.Len(t, bagginses, 2)
	assert.Equal(t, "Frodo", domain.Value(bagginses[0].FirstName))
	assert.Equal(t, "Bilbo", domain.Value(bagginses[1].FirstName))

	none, err := repo.FindByLastName(ctx, domain.Text("Took"))
	require.NoError(t, err)
	assert.Empty(t, none)

	// A missing name matches customers without one
	unnamed, err := repo.FindByLastName(ctx, nil)
	require.NoError(t, err)
	require.Len(t, unnamed, 1)
	assert.Equal(t, "Gollum", domain.Value(unnamed[0].FirstName))
}

func TestCustomerRepository_DeleteByID(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_DeleteByID")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, frodo())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))

	_, err = repo.FindByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_ExistsCountDeleteAll(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_ExistsCountDeleteAll")
	repo := NewCustomerRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, frodo())
	require.NoError(t, err)
	_, err = repo.Save(ctx, frodo())
	require.NoError(t, err)

	exists, err := repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, 99999)
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCustomerRepository_Properties(t *testing.T) {
	ds := testutil.SetupTestDBWithMigrations(t, "TestCustomerRepository_Properties")
	repo := NewCustomerRepository(ds)

	assert.Equal(t, []string{"firstName", "lastName", "address", "trip"}, repo.Properties())
}
