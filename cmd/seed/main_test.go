package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/infrastructure/memory"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

func adminConfig() *config.Config {
	return &config.Config{
		AdminName:     "Root",
		AdminEmail:    " Admin@Shop.com ",
		AdminPhone:    "+19995550000",
		AdminPassword: "Adm1n!pass",
	}
}

func TestSeedAdminCreates(t *testing.T) {
	validation.Init()
	users := memory.NewUserRepository()
	hasher := &helpers.Hasher{Cost: bcrypt.MinCost}

	u, created, err := seedAdmin(context.Background(), users, hasher, adminConfig())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin@shop.com", u.Email)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.True(t, u.IsVerified)

	stored, err := users.GetByEmail(context.Background(), "admin@shop.com")
	require.NoError(t, err)
	assert.True(t, hasher.Compare(stored.Password, "Adm1n!pass"))

	_, created, err = seedAdmin(context.Background(), users, hasher, adminConfig())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeedAdminPromotesExisting(t *testing.T) {
	validation.Init()
	users := memory.NewUserRepository()
	hasher := &helpers.Hasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("Orig1nal!")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &entity.User{
		Name: "Old", Email: "admin@shop.com", Phone: "+19995550001", Password: hash, Role: entity.RoleUser,
		OTP: &entity.OTP{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)},
	}))

	cfg := adminConfig()
	cfg.AdminPassword = ""
	u, created, err := seedAdmin(context.Background(), users, hasher, cfg)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	stored, err := users.GetByEmail(context.Background(), "admin@shop.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)
	assert.True(t, hasher.Compare(stored.Password, "Orig1nal!"))
}

func TestSeedAdminRejectsBadConfig(t *testing.T) {
	validation.Init()
	users := memory.NewUserRepository()
	hasher := &helpers.Hasher{Cost: bcrypt.MinCost}

	cases := map[string]func(*config.Config){
		"email":    func(c *config.Config) { c.AdminEmail = "nope" },
		"password": func(c *config.Config) { c.AdminPassword = "weak" },
		"phone":    func(c *config.Config) { c.AdminPhone = "12" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := adminConfig()
			mutate(cfg)
			_, _, err := seedAdmin(context.Background(), users, hasher, cfg)
			assert.Error(t, err)
		})
	}
}
