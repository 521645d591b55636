package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/mocks"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/ports"
)

// These tests pin the exact mirror protocol: which keys the store touches and
// how often. The state-level behavior is covered in store_test.go.

func TestStore_HydrationReadsEachKeyExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mirror := mocks.NewMockMirror(ctrl)
	mirror.EXPECT().Read(gomock.Any(), KeyCSRFToken).Return("tok-1", nil).Times(1)
	mirror.EXPECT().Read(gomock.Any(), KeyUser).
		Return(`{"id":7,"email":"eve@example.com","roles":["admin"]}`, nil).Times(1)

	store := NewStore(StoreOptions{Mirror: mirror})
	ctx := context.Background()

	require.Equal(t, "tok-1", store.Token(ctx))
	require.True(t, store.IsAuthenticated(ctx))

	token, user := store.Snapshot(ctx)
	require.Equal(t, "tok-1", token)
	require.NotNil(t, user)
	require.Equal(t, "eve@example.com", user.Email)
}

func TestStore_SetSessionWritesBothDurableKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mirror := mocks.NewMockMirror(ctrl)
	mirror.EXPECT().Read(gomock.Any(), KeyCSRFToken).Return("", ports.ErrMirrorEntryNotFound)
	mirror.EXPECT().Read(gomock.Any(), KeyUser).Return("", ports.ErrMirrorEntryNotFound)
	mirror.EXPECT().Write(gomock.Any(), KeyCSRFToken, "tok-9").Return(nil)
	mirror.EXPECT().Write(gomock.Any(), KeyUser, gomock.Any()).Return(nil)

	store := NewStore(StoreOptions{Mirror: mirror})
	store.SetSession(context.Background(), "tok-9", &domainauth.User{ID: 7, Email: "eve@example.com"})
}

func TestStore_ClearDeletesDurableKeysWithoutReading(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mirror := mocks.NewMockMirror(ctrl)
	mirror.EXPECT().Delete(gomock.Any(), KeyCSRFToken).Return(nil)
	mirror.EXPECT().Delete(gomock.Any(), KeyUser).Return(nil)

	store := NewStore(StoreOptions{Mirror: mirror})
	ctx := context.Background()
	store.Clear(ctx)

	// A cleared store must answer from memory; any mirror call here would
	// fail the unexpected-call check.
	require.Empty(t, store.Token(ctx))
	require.False(t, store.IsAuthenticated(ctx))
}
