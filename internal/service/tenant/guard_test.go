package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func TestAuthorize(t *testing.T) {
	userID, clinicID := uuid.New(), uuid.New()
	sess := &model.Session{ID: uuid.New(), UserID: userID}

	tests := []struct {
		name     string
		sess     *model.Session
		exists   bool
		repoErr  error
		wantCode apperrors.ErrorCode
		wantErr  bool
	}{
		{name: "no session", sess: nil, wantCode: apperrors.ErrUnauthorized, wantErr: true},
		{name: "not a member", sess: sess, exists: false, wantCode: apperrors.ErrForbidden, wantErr: true},
		{name: "member", sess: sess, exists: true},
		{name: "lookup failure", sess: sess, repoErr: errors.New("db down"), wantCode: apperrors.ErrInternal, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MembershipRepository)
			if tt.sess != nil {
				repo.On("Exists", mock.Anything, userID, clinicID).Return(tt.exists, tt.repoErr)
			}

			err := NewGuard(repo).Authorize(context.Background(), tt.sess, clinicID)
			if !tt.wantErr {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			}
			if tt.sess == nil {
				repo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}
