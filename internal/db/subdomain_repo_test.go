package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubdomainRepository_IsTaken(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		scanErr error
		wantErr bool
	}{
		{name: "taken", exists: true},
		{name: "free", exists: false},
		{name: "db error", scanErr: errors.New("timeout"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mockDBTX)
			db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), []any{"acme"}).
				Return(&mockRow{scanFn: func(dest ...any) error {
					if tt.scanErr != nil {
						return tt.scanErr
					}
					*dest[0].(*bool) = tt.exists
					return nil
				}})

			got, err := NewSubdomainRepository(db).IsTaken(context.Background(), "acme")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
		})
	}
}
