package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/services"
)

type mockSweeper struct{ mock.Mock }

func (m *mockSweeper) SweepOverdue(ctx context.Context) (*services.SweepResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*services.SweepResult)
	return res, args.Error(1)
}

func TestRunOverdueSweep(t *testing.T) {
	m := &mockSweeper{}
	want := &services.SweepResult{Checked: 3, Overdue: []string{"TT1"}, Restored: []string{}}
	m.On("SweepOverdue", mock.Anything).Return(want, nil).Once()

	got, err := RunOverdueSweep(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	m.AssertExpectations(t)
}

func TestRunOverdueSweepError(t *testing.T) {
	m := &mockSweeper{}
	m.On("SweepOverdue", mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := RunOverdueSweep(context.Background(), m)
	assert.EqualError(t, err, "db down")
}

func TestStartOverdueSweepRejectsBadSchedule(t *testing.T) {
	_, err := StartOverdueSweep(context.Background(), "every tuesday", &mockSweeper{})
	assert.Error(t, err)

	c, err := StartOverdueSweep(context.Background(), "0 6 * * *", &mockSweeper{})
	require.NoError(t, err)
	<-c.Stop().Done()
	assert.Len(t, c.Entries(), 1)
}
