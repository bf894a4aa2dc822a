package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otlobha/menuhub/internal/model"
)

func TestAccessService_Evaluate(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	strangerID := uuid.New()
	tenant := &model.Tenant{ID: uuid.New(), OwnerID: ownerID}

	membershipRepo := newFakeMembershipRepo()
	require.NoError(t, membershipRepo.Create(context.Background(), &model.Membership{
		TenantID: tenant.ID,
		UserID:   memberID,
		Role:     model.RoleStaff,
	}))

	svc := NewAccessService(membershipRepo)

	cases := []struct {
		name      string
		principal Principal
		wantErr   error
	}{
		{
			name:      "platform admin reaches any tenant",
			principal: Principal{UserID: strangerID, Role: model.RoleSuperAdmin},
		},
		{
			name:      "owner",
			principal: Principal{UserID: ownerID, Role: model.RoleRestaurantOwner},
		},
		{
			name:      "member via membership row",
			principal: Principal{UserID: memberID, Role: model.RoleStaff},
		},
		{
			name:      "stranger denied",
			principal: Principal{UserID: strangerID, Role: model.RoleRestaurantOwner},
			wantErr:   ErrAccessDenied,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Evaluate(context.Background(), tc.principal, tenant)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("revoked membership takes effect immediately", func(t *testing.T) {
		require.NoError(t, membershipRepo.Delete(context.Background(), tenant.ID, memberID))

		err := svc.Evaluate(context.Background(), Principal{UserID: memberID, Role: model.RoleStaff}, tenant)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}
