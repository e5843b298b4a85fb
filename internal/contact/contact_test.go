package contact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type fixedLocales struct{}

func (fixedLocales) Default() string { return "en" }
func (fixedLocales) IsSupported(locale string) bool {
	return locale == "en" || locale == "fr" || locale == "ar"
}

func newTestService(t *testing.T) *service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(dbtest.Open(t, dbtest.ContactMessagesTable)),
		Locales: fixedLocales{},
	})
	require.NoError(t, err)
	return svc.(*service)
}

func TestSubmitNormalizes(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	msg, err := svc.Submit(context.Background(), CreateMessageInput{
		Name:    " Nour ",
		Email:   "Nour@Example.com",
		Subject: "Order",
		Message: " Where is my phone? ",
		Locale:  "AR",
	}, &userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, "Nour", msg.Name)
	assert.Equal(t, "nour@example.com", msg.Email)
	assert.Equal(t, "Where is my phone?", msg.Message)
	assert.Equal(t, "ar", msg.Locale)
	require.NotNil(t, msg.UserID)
	assert.Equal(t, userID, *msg.UserID)

	fallback, err := svc.Submit(context.Background(), CreateMessageInput{
		Name: "Guest", Email: "g@example.com", Subject: "Hi", Message: "Hello", Locale: "de",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "en", fallback.Locale)
	assert.Nil(t, fallback.UserID)
}

func TestSubmitRejectsBlankFields(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Submit(context.Background(), CreateMessageInput{
		Name: "  ", Email: "g@example.com", Subject: "Hi", Message: "Hello",
	}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		_, err := svc.Submit(context.Background(), CreateMessageInput{
			Name: "N", Email: "n@example.com", Subject: "S", Message: "M" + string(rune('a'+i)),
		}, nil)
		require.NoError(t, err)
	}

	first, err := svc.List(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Mc", first.Items[0].Message)
	assert.Equal(t, "Mb", first.Items[1].Message)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Ma", second.Items[0].Message)
	assert.Empty(t, second.NextCursor)

	_, err = svc.List(context.Background(), pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
