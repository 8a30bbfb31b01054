package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"operator role", RoleOperator, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	manager := &User{Role: RoleManager}
	operator := &User{Role: RoleOperator}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can delete user", admin, "delete_user", true},
		{"admin can manage users", admin, "manage_users", true},
		{"admin can run scoring", admin, "run_scoring", true},

		// Manager permissions - everything except user management
		{"manager cannot delete user", manager, "delete_user", false},
		{"manager cannot manage users", manager, "manage_users", false},
		{"manager can run scoring", manager, "run_scoring", true},
		{"manager can run training", manager, "run_training", true},
		{"manager can record maintenance", manager, "record_maintenance", true},

		// Operator permissions - operational tasks only
		{"operator can view tools", operator, "view_tools", true},
		{"operator can checkout tool", operator, "checkout_tool", true},
		{"operator can checkin tool", operator, "checkin_tool", true},
		{"operator can record maintenance", operator, "record_maintenance", true},
		{"operator cannot run scoring", operator, "run_scoring", false},
		{"operator cannot manage users", operator, "manage_users", false},

		// Viewer permissions - read-only access
		{"viewer can view tools", viewer, "view_tools", true},
		{"viewer can view predictions", viewer, "view_predictions", true},
		{"viewer can view maintenance", viewer, "view_maintenance", true},
		{"viewer cannot checkout tool", viewer, "checkout_tool", false},
		{"viewer cannot record maintenance", viewer, "record_maintenance", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
