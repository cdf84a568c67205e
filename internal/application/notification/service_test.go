package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *mockStore) MarkAsRead(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject, message string) error {
	return m.Called(ctx, subject, message).Error(0)
}

func TestCreate_FansOutPerTarget(t *testing.T) {
	st := &mockStore{}
	st.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Title == "Password Updated" && n.CanMarkAsRead && !n.CanDelete && !n.IsRead
	})).Return(nil).Times(3)

	svc := NewService(st, nil)
	err := svc.Create(context.Background(), domain.CreateNotificationInput{
		Title:     "Password Updated",
		Content:   "Your password has been updated successfully!",
		Type:      domain.NotificationAccount,
		TargetIDs: []string{"u1", "u2", "u3"},
	})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestCreate_PublishFailureIsSwallowed(t *testing.T) {
	st := &mockStore{}
	pb := &mockPublisher{}
	st.On("Put", mock.Anything, mock.Anything).Return(nil)
	pb.On("Publish", mock.Anything, "Email Updated", mock.Anything).Return(errors.New("sns down"))

	svc := NewService(st, pb)
	err := svc.Create(context.Background(), domain.CreateNotificationInput{
		Title:     "Email Updated",
		Content:   "Your email has been updated",
		Type:      domain.NotificationAccount,
		TargetIDs: []string{"u1"},
	})

	assert.NoError(t, err)
	pb.AssertExpectations(t)
}

func TestMarkAsRead_WrongOwner(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "other", CanMarkAsRead: true,
	}, nil)

	svc := NewService(st, nil)
	err := svc.MarkAsRead(context.Background(), "u1", "n1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	st.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestMarkAsRead_Locked(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", CanMarkAsRead: false,
	}, nil)

	svc := NewService(st, nil)
	err := svc.MarkAsRead(context.Background(), "u1", "n1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestMarkAsRead_HappyPath(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", CanMarkAsRead: true,
	}, nil)
	st.On("MarkAsRead", mock.Anything, "n1").Return(nil)

	svc := NewService(st, nil)
	require.NoError(t, svc.MarkAsRead(context.Background(), "u1", "n1"))
	st.AssertExpectations(t)
}
