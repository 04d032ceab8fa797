package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestValidating_Upsert(t *testing.T) {
	tests := map[string]struct {
		row       schema.Row
		mockSetup func(m *MockGateway)
		wantErr   string
	}{
		"valid row is forwarded": {
			row: cupcake,
			mockSetup: func(m *MockGateway) {
				m.EXPECT().Upsert(gomock.Any(), cupcake).Return(cupcake, nil)
			},
		},
		"missing id": {
			row:       schema.Row{Name: "Cupcake"},
			mockSetup: func(m *MockGateway) {},
			wantErr:   "id is required",
		},
		"negative calories and missing name": {
			row:       schema.Row{ID: "1", Calories: -1},
			mockSetup: func(m *MockGateway) {},
			wantErr:   "name is required; calories must be at least 0",
		},
		"name too long": {
			row:       schema.Row{ID: "1", Name: strings.Repeat("x", 101)},
			mockSetup: func(m *MockGateway) {},
			wantErr:   "name must be at most 100 characters",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := NewMockGateway(ctrl)
			tc.mockSetup(next)

			v := NewValidating(next)
			got, err := v.Upsert(context.Background(), tc.row)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.row, got)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidating_PassesThroughReadsAndDeletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockGateway(ctrl)
	next.EXPECT().FetchAll(gomock.Any()).Return([]schema.Row{cupcake}, nil)
	next.EXPECT().DeleteOne(gomock.Any(), schema.ID("1")).Return(nil)

	v := NewValidating(next)
	rows, err := v.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, v.DeleteOne(context.Background(), "1"))
}
