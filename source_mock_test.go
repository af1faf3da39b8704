package mqpasswd

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type PasswordSourceMock struct {
	mock.Mock
}

func (m *PasswordSourceMock) Password(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}
