package handlers

import (
	"testing"

	"restaurant-api/apperrors"
	"restaurant-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLinks(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		page  int
		total int64
		want  string
	}{
		{
			name: "single_page", limit: 10, page: 1, total: 3,
			want: `</users?limit=10&page=1>; rel="first", </users?limit=10&page=1>; rel="last"`,
		},
		{
			name: "middle_page", limit: 2, page: 2, total: 5,
			want: `</users?limit=2&page=1>; rel="first", </users?limit=2&page=1>; rel="prev", </users?limit=2&page=3>; rel="next", </users?limit=2&page=3>; rel="last"`,
		},
		{
			name: "past_the_end", limit: 2, page: 7, total: 5,
			want: `</users?limit=2&page=1>; rel="first", </users?limit=2&page=3>; rel="prev", </users?limit=2&page=3>; rel="last"`,
		},
		{
			name: "empty", limit: 5, page: 1, total: 0,
			want: `</users?limit=5&page=1>; rel="first", </users?limit=5&page=1>; rel="last"`,
		},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, pageLinks("/users", testCase.limit, testCase.page, testCase.total))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestUpdateOrderChanges(t *testing.T) {
	order := &models.Order{ID: "o1", Status: models.StatusPreparing}

	changes, err := updateOrderRequest{Status: ptr(models.StatusDelivering), Client: ptr(" Table 9 ")}.changes(order)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivering, changes.Fields["status"])
	assert.Equal(t, "Table 9", changes.Fields["client"])
	require.NotNil(t, changes.History)
	assert.Equal(t, models.StatusPreparing, changes.History.FromStatus)

	changes, err = updateOrderRequest{Status: ptr(models.StatusPreparing)}.changes(order)
	require.NoError(t, err)
	assert.Nil(t, changes.History)
	assert.Empty(t, changes.Fields)

	changes, err = updateOrderRequest{Products: &[]orderLineRequest{{Product: "p1", Qty: 2}}}.changes(order)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderLine{{ProductID: "p1", Qty: 2}}, changes.Lines)

	invalid := map[string]updateOrderRequest{
		"nothing":        {},
		"unknown_status": {Status: ptr(models.OrderStatus("cooking"))},
		"backwards":      {Status: ptr(models.StatusPending)},
		"blank_user":     {UserID: ptr("")},
		"blank_client":   {Client: ptr("  ")},
		"no_lines":       {Products: &[]orderLineRequest{}},
		"zero_qty":       {Products: &[]orderLineRequest{{Product: "p1"}}},
	}
	for name, req := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := req.changes(order)
			assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		})
	}
}

func TestUpdateUserFields(t *testing.T) {
	fields, err := updateUserRequest{Name: ptr("Ana"), Password: ptr("secret123")}.fields()
	require.NoError(t, err)
	assert.Equal(t, "Ana", fields["name"])
	assert.NotEqual(t, "secret123", fields["password_hash"])
	assert.NotContains(t, fields, "password")

	for name, req := range map[string]updateUserRequest{
		"blank_username": {Username: ptr(" ")},
		"bad_email":      {Email: ptr("ana.example")},
		"short_password": {Password: ptr("12")},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := req.fields()
			assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		})
	}
}
