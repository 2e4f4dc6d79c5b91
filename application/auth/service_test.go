package auth

import (
	"context"
	"testing"

	"workshop/domain/client"
	"workshop/domain/shared"
	"workshop/domain/worker"
	"workshop/infrastructure/persistence/memory"
	"workshop/infrastructure/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	clients := memory.NewClientRepository(store)
	workers := memory.NewWorkerRepository(store)

	c, err := client.NewClient(client.Profile{First: "Anna", Last: "Ivanova", Phone: "+79001234567", Username: "anna"}, "secret1", hasher)
	require.NoError(t, err)
	require.NoError(t, clients.Save(ctx, c))

	w, err := worker.NewWorker(worker.Profile{First: "Petr", Last: "Smirnov", Phone: "89007654321", Username: "petr", Position: "jeweler"}, "secret2", hasher)
	require.NoError(t, err)
	require.NoError(t, workers.Save(ctx, w))

	svc := NewService(clients, workers, hasher)

	tests := []struct {
		name     string
		req      LoginRequest
		want     *Identity
		rejected bool
	}{
		{"client", LoginRequest{Phone: "8 900 123-45-67", Password: "secret1"}, &Identity{Role: RoleClient, ID: c.ID(), Name: "Ivanova Anna"}, false},
		{"worker", LoginRequest{Phone: "+7 (900) 765-43-21", Password: "secret2"}, &Identity{Role: RoleWorker, ID: w.ID(), Name: "Smirnov Petr"}, false},
		{"wrong password", LoginRequest{Phone: "+79001234567", Password: "secret2"}, nil, true},
		{"unknown phone", LoginRequest{Phone: "+79990000000", Password: "secret1"}, nil, true},
		{"malformed phone", LoginRequest{Phone: "123", Password: "secret1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(ctx, tt.req)
			if tt.rejected {
				assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
				assert.ErrorIs(t, err, shared.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
