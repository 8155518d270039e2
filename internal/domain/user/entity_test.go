package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDefaultAddress(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		wantArea string
		wantNil  bool
	}{
		{
			name:    "no profile",
			user:    User{},
			wantNil: true,
		},
		{
			name:    "profile without addresses",
			user:    User{Profile: &Profile{}},
			wantNil: true,
		},
		{
			name: "default flagged address wins",
			user: User{Profile: &Profile{Addresses: []Address{
				{Area: "Westlands"},
				{Area: "Kilimani", IsDefault: true},
			}}},
			wantArea: "Kilimani",
		},
		{
			name: "falls back to first when none flagged",
			user: User{Profile: &Profile{Addresses: []Address{
				{Area: "Westlands"},
				{Area: "Kilimani"},
			}}},
			wantArea: "Westlands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := tt.user.DefaultAddress()
			if tt.wantNil {
				assert.Nil(t, addr)
				return
			}
			require.NotNil(t, addr)
			assert.Equal(t, tt.wantArea, addr.Area)
		})
	}
}

func TestAddressFreeText(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{
			name: "all parts present",
			addr: Address{Area: "Westlands", Town: "Nairobi", County: "Nairobi", Country: "Kenya"},
			want: "Westlands, Nairobi, Nairobi, Kenya",
		},
		{
			name: "blank parts skipped",
			addr: Address{Area: "Westlands", Country: "Kenya"},
			want: "Westlands, Kenya",
		},
		{
			name: "empty address",
			addr: Address{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.FreeText())
		})
	}
}

func TestAddressHasCoordinates(t *testing.T) {
	assert.True(t, (&Address{Latitude: floatPtr(-1.29), Longitude: floatPtr(36.82)}).HasCoordinates())
	assert.False(t, (&Address{Latitude: floatPtr(-1.29)}).HasCoordinates())
	assert.False(t, (&Address{Longitude: floatPtr(36.82)}).HasCoordinates())
	assert.False(t, (&Address{}).HasCoordinates())
}

func TestGetDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "full name from profile",
			user: User{Email: "jane@example.com", Profile: &Profile{FirstName: "Jane", LastName: "Wanjiku"}},
			want: "Jane Wanjiku",
		},
		{
			name: "first name only",
			user: User{Email: "jane@example.com", Profile: &Profile{FirstName: "Jane"}},
			want: "Jane",
		},
		{
			name: "falls back to email without profile",
			user: User{Email: "jane@example.com"},
			want: "jane@example.com",
		},
		{
			name: "falls back to email with blank profile",
			user: User{Email: "jane@example.com", Profile: &Profile{}},
			want: "jane@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.GetDisplayName())
		})
	}
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, (&User{Role: RoleDriver}).IsDriver())
	assert.False(t, (&User{Role: RoleCustomer}).IsDriver())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdminRole())
	assert.False(t, (&User{Role: RoleStore}).IsAdminRole())
}
